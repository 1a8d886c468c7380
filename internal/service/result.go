package service

// Kind 工具调用结果的类型
type Kind string

const (
	KindSuccess        Kind = "success"
	KindInputEmpty     Kind = "input_empty"
	KindNotFound       Kind = "not_found"
	KindNoData         Kind = "no_data"
	KindInconsistency  Kind = "inconsistency"
	KindInfrastructure Kind = "infrastructure"
)

// Result 工具调用结果；失败也用 Result 表达，不向调用方返回 error
type Result struct {
	Kind   Kind     `json:"kind"`
	Header string   `json:"header,omitempty"`
	Lines  []string `json:"lines,omitempty"`
	// Message 非 Success 时的提示文本
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// String 渲染成展示给用户的文本
func (r Result) String() string {
	if r.Kind != KindSuccess {
		return r.Message
	}
	out := r.Header
	for _, line := range r.Lines {
		if out != "" {
			out += "\n"
		}
		out += line
	}
	return out
}

func success(header string, lines ...string) Result {
	return Result{Kind: KindSuccess, Header: header, Lines: lines}
}

func failure(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

func infraFailure(prefix string, err error) Result {
	return Result{Kind: KindInfrastructure, Message: prefix + ": " + err.Error(), Err: err}
}

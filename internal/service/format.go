package service

import (
	"fmt"
	"strconv"
	"strings"
)

// 展示文本集中在这里
const (
	MsgNoLikedTitles      = "Please provide at least one movie title you like."
	MsgLikedNotFound      = "None of your liked movies were found in the catalog."
	MsgNoOverviewData     = "No descriptive (overview) data is available for the movies you like."
	MsgNoRecommendations  = "No similar recommendations found."
	MsgEmptyQuote         = "Please provide a quote to search for."
	MsgQuoteNotFound      = "No movie found for this quote."
	MsgQuoteNoMovieInfo   = "Found the quote but no movie information."
	MsgNoTrending         = "No trending data available."
	HeaderRecommendations = "Recommended for you:"
	HeaderTrending        = "Top 5 trending movies (by rating and vote count):"

	prefixRecommendError = "Recommendation error"
	prefixQuoteError     = "Search error"
	prefixTrendingError  = "Trending error"
)

// YearOrNA 年份缺失时显示 N/A
func YearOrNA(year string) string {
	if strings.TrimSpace(year) == "" {
		return "N/A"
	}
	return year
}

// ParseTitles 按逗号拆分，去掉首尾空白和空片段
func ParseTitles(input string) []string {
	parts := strings.Split(input, ",")
	titles := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

func formatMovie(title, year string) string {
	return fmt.Sprintf("**%s** (%s)", title, YearOrNA(year))
}

func formatBullet(title, year string) string {
	return "- " + formatMovie(title, year)
}

func formatTrending(title, year string, avg float64, count int) string {
	return fmt.Sprintf("- **%s** (%s) – %s rating from %d votes", title, YearOrNA(year), formatRating(avg), count)
}

// formatRating 原样保留评分精度，整数补一位小数：8.75 -> 8.75，9 -> 9.0
func formatRating(avg float64) string {
	s := strconv.FormatFloat(avg, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

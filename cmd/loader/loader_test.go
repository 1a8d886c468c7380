package main

import (
	"bytes"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/user/moviebot/internal/middleware"
)

var _ = Describe("loader", func() {
	run := func(args ...string) (string, error) {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	It("registers the subcommands", func() {
		var names []string
		for _, c := range newRootCmd().Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElements("crawl", "load", "token"))
	})

	It("prints an admin token signed with APP_SECRET", func() {
		GinkgoT().Setenv("APP_SECRET", "loader-secret")

		out, err := run("token", "--name", "ops")
		Expect(err).NotTo(HaveOccurred())

		claims := &middleware.Claims{}
		_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (any, error) {
			return []byte("loader-secret"), nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Name).To(Equal("ops"))
		Expect(claims.Role).To(Equal(middleware.RoleAdmin))
	})

	It("refuses to crawl without a TMDB token", func() {
		GinkgoT().Setenv("TMDB_TOKEN", "")
		GinkgoT().Setenv("TMDB_API_KEY", "")

		_, err := run("crawl")
		Expect(err).To(MatchError("TMDB_TOKEN is not set"))
	})

	It("exposes index defaults as flags", func() {
		load, _, err := newRootCmd().Find([]string{"load"})
		Expect(err).NotTo(HaveOccurred())
		Expect(load.Flags().Lookup("limit").DefValue).To(Equal("10000"))
		Expect(load.Flags().Lookup("min-votes").DefValue).To(Equal("50"))
	})
})

package repl

import (
	"context"
	"errors"
	"strings"

	"github.com/js-lib-com/wood-sub003/log"
)

var errResolve = errors.New("resolve failed")

// fakeSession resolves by replacing known references with their values.
type fakeSession struct {
	vars     map[string]string
	reloads  int
	reloadFn func() (bool, error)
}

func newFakeSession() *fakeSession {
	return &fakeSession{vars: map[string]string{
		"@string/title": "Wood",
		"@string/long":  "a fairly\n long value",
		"@dimen/gap":    "4px",
	}}
}

func (s *fakeSession) Resolve(text, _, _ string) (string, error) {
	if strings.Contains(text, "@string/missing") {
		return "", errResolve
	}

	for k, v := range s.vars {
		text = strings.ReplaceAll(text, k, v)
	}

	return text, nil
}

func (s *fakeSession) Raw(reference, _, _ string) (string, bool) {
	v, ok := s.vars[reference]

	return v, ok
}

func (s *fakeSession) References() []string {
	return []string{"@dimen/gap", "@string/long", "@string/title"}
}

func (s *fakeSession) Opcodes() []string {
	return []string{"add", "div", "max", "min", "mul", "sub"}
}

func (s *fakeSession) Reload(context.Context) (bool, error) {
	s.reloads++
	if s.reloadFn != nil {
		return s.reloadFn()
	}

	return true, nil
}

func (s *fakeSession) Root() string { return "/project" }

func (s *fakeSession) Locale() string { return "en" }

func testModel(session Session) model {
	return newModel(context.Background(), session, NewHistory(""), log.Logger{})
}

package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/user"
)

func TestRollbarLogger_mirrorsToStd(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Debug: true, Env: "TEST"})

	viewer := user.User{ID: "u1", Name: "Awa", Email: "awa@school.sn", Secret: "hidden"}
	l.Error("remote write failed", errors.New("boom"), viewer)

	out := buf.String()
	assert.Contains(t, out, "[ERROR] remote write failed")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "viewer: u1 <awa@school.sn>")
	assert.NotContains(t, out, "hidden")
}

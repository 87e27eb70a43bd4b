package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/user"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), core.NewTestConfig())
	logger.Enable(false)

	usr := user.User{ID: "42", Username: "ada_lovelace", Email: "ada@semsync.io", PasswordHash: []byte("secret-hash")}
	logger.Error("Internal Server Error", errors.New("boom"), map[string]interface{}{"path": "/api/dashboard"}, usr)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "API : ERROR Internal Server Error", lines[0])
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "/api/dashboard")
	assert.Contains(t, out, `user: id=42 username="ada_lovelace" email="ada@semsync.io"`)
	assert.NotContains(t, out, "secret-hash")
}

package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	Setup()
	m.Run()
}

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind_Valid(t *testing.T) {
	var req model.CreateGrantRequest
	fields := bindBody(t, `{"resource":"inventory","level":"read"}`, &req)
	require.Nil(t, fields)
	assert.Equal(t, "inventory", req.Resource)
}

func TestBind_UnknownResource(t *testing.T) {
	var req model.CreateGrantRequest
	fields := bindBody(t, `{"resource":"rockets","level":"read"}`, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields["resource"], "no es un recurso conocido")
}

func TestBind_BadLevelUsesJSONFieldName(t *testing.T) {
	var req model.CreateGrantRequest
	fields := bindBody(t, `{"resource":"inventory","level":"admin"}`, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "level")
}

func TestBind_UnknownRole(t *testing.T) {
	var req model.CreateIdentityRequest
	fields := bindBody(t, `{"email":"a@b.mx","display_name":"A","password":"secret1","role":"janitor","tenant_id":"acme","site_id":"s1"}`, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields["role"], "no es un rol conocido")
}

func TestBind_MalformedJSON(t *testing.T) {
	var req model.LoginRequest
	fields := bindBody(t, `{"email":`, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}

package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"translation/translate.en_US.toml": {Data: []byte(`
[todos]
"empty" = "No Todos Found"

[validation]
"invalidType" = "Invalid datatype for {{ .Field }}"
`)},
	"translation/translate.de_DE.toml": {Data: []byte(`
[todos]
"empty" = "Keine Aufgaben"
`)},
}

func TestI18n(t *testing.T) {
	l, err := InitLocalizer(testFS)
	require.NoError(t, err)

	en := l.Localizer("en-US")
	assert.Equal(t, "No Todos Found", I18n(en, "todos.empty"))
	assert.Equal(t, "Invalid datatype for username", I18n(en, "validation.invalidType", "Field==username"))
	assert.Equal(t, "todos.unknown", I18n(en, "todos.unknown"))
	assert.Equal(t, "todos.empty", I18n(nil, "todos.empty"))

	de := l.Localizer("de-DE,de;q=0.9")
	assert.Equal(t, "Keine Aufgaben", I18n(de, "todos.empty"))
	// missing in German, falls back to English
	assert.Equal(t, "Invalid datatype for name", I18n(de, "validation.invalidType", "Field==name"))
}

func TestInitLocalizerRejectsBrokenFile(t *testing.T) {
	_, err := InitLocalizer(fstest.MapFS{
		"translation/translate.en_US.toml": {Data: []byte(`"unterminated = `)},
	})
	assert.Error(t, err)
}

func TestLocalizerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := InitLocalizer(testFS)
	require.NoError(t, err)

	r := gin.New()
	r.Use(l.LocalizerMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, I18n(FromContext(c), "todos.empty"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Keine Aufgaben", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de")
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en-US"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "No Todos Found", w.Body.String())
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/application"
	"github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	"github.com/dmehra2102/lesson-reservation/internal/platform/memory"
)

func newRouter(t *testing.T) (http.Handler, []domain.Entry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.NewStore().Catalog())
	seeded, err := svc.Seed(context.Background())
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(log, svc).Register(r)
	return r, seeded
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []domain.Entry {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var out []domain.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListLessons(t *testing.T) {
	h, seeded := newRouter(t)

	all := decodeList(t, call(t, h, http.MethodGet, "/lessons", ""))
	require.Len(t, all, len(seeded))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Subject, all[i].Subject)
	}

	byPrice := decodeList(t, call(t, h, http.MethodGet, "/lessons?sort=price&dir=desc", ""))
	for i := 1; i < len(byPrice); i++ {
		assert.GreaterOrEqual(t, byPrice[i-1].Price, byPrice[i].Price)
	}
}

func TestSearchMatchesSubjectOrLocation(t *testing.T) {
	h, seeded := newRouter(t)
	term := strings.ToUpper(seeded[0].Location)

	viaLessons := decodeList(t, call(t, h, http.MethodGet, "/lessons?search="+url.QueryEscape(term), ""))
	viaSearch := decodeList(t, call(t, h, http.MethodGet, "/search?q="+url.QueryEscape(term), ""))

	require.NotEmpty(t, viaLessons)
	assert.Equal(t, viaLessons, viaSearch)
	for _, e := range viaLessons {
		assert.True(t,
			strings.Contains(strings.ToLower(e.Subject), strings.ToLower(term)) ||
				strings.Contains(strings.ToLower(e.Location), strings.ToLower(term)))
	}

	none := decodeList(t, call(t, h, http.MethodGet, "/search?q=zzz-no-such-lesson", ""))
	assert.Empty(t, none)
}

func TestUpdateLesson(t *testing.T) {
	h, seeded := newRouter(t)
	id := seeded[0].ID

	rec := call(t, h, http.MethodPut, "/lessons/"+id, `{"spaces":12,"price":2500}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/lessons/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 12, got.Capacity)
	assert.EqualValues(t, 2500, got.Price)
	assert.Equal(t, seeded[0].Subject, got.Subject)
}

func TestUpdateLessonErrors(t *testing.T) {
	h, seeded := newRouter(t)
	id := seeded[0].ID

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"invalid id", "/lessons/abc", `{"spaces":1}`, http.StatusBadRequest},
		{"empty patch", "/lessons/" + id, `{}`, http.StatusBadRequest},
		{"negative spaces", "/lessons/" + id, `{"spaces":-1}`, http.StatusBadRequest},
		{"spaces not a number", "/lessons/" + id, `{"spaces":"many"}`, http.StatusBadRequest},
		{"missing lesson", "/lessons/5b0f7a3e-8f43-4d6c-9f55-2d1b1c1d1e1f", `{"spaces":1}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, h, http.MethodPut, tt.path, tt.body).Code)
		})
	}
}

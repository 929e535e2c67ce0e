package webutils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteError(t *testing.T) {
	for _, test := range []struct {
		err  error
		code int
	}{
		{errors.Wrapf(os.ErrNotExist, "shape 'x.dts'"), http.StatusNotFound},
		{errors.New("broken"), http.StatusInternalServerError},
	} {
		rec := httptest.NewRecorder()
		WriteError(rec, test.err)
		if rec.Code != test.code {
			t.Errorf("%v: code %d; expected %d", test.err, rec.Code, test.code)
		}
		if !strings.HasPrefix(rec.Body.String(), `{"error":`) {
			t.Errorf("%v: body %q", test.err, rec.Body.String())
		}
	}
}

func TestWriteJson(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJson(rec, map[string]int{"nodes": 3})
	if rec.Body.String() != `{"nodes":3}` || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("response %q %q", rec.Body.String(), rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	WriteJson(rec, func() {})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unmarshalable value code %d", rec.Code)
	}
}

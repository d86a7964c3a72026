package site

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/formpost/internal/submitter"
	"github.com/okian/formpost/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// ignoringSubmitter does not take ownership of the event.
type ignoringSubmitter struct{ calls int }

func (s *ignoringSubmitter) HandleSubmit(_ context.Context, _ submitter.Event, _ submitter.Form, _ submitter.StatusDisplay) submitter.Result {
	s.calls++
	return submitter.Result{}
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSitePage(t *testing.T) {
	Convey("Given the form page handler", t, func() {
		h := New(&ignoringSubmitter{}, WithLogger(logger.Nop()))

		Convey("When requesting the page", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			Convey("Then it should render the form, the six inputs and an empty status element", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `id="mainForm"`)
				for _, id := range submitter.Fields {
					So(body, ShouldContainSubstring, `id="`+id+`"`)
				}
				So(body, ShouldContainSubstring, `<p id="form-response" aria-live="polite"></p>`)
			})
		})

		Convey("When requesting an unknown path", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/elsewhere", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When using an unsupported method", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSiteSubmit(t *testing.T) {
	Convey("Given the page wired to a submitter and a mocked endpoint", t, func() {
		status := http.StatusOK
		var got map[string]string
		var origin string
		calls := 0
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			origin = r.Header.Get("Origin")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(status)
		}))
		defer endpoint.Close()

		sub := submitter.New(submitter.WithEndpoint(endpoint.URL), submitter.WithLogger(logger.Nop()))
		h := New(sub, WithLogger(logger.Nop()))
		values := url.Values{
			"name":                  {"Grace"},
			"email":                 {"grace@example.com"},
			"phone":                 {""},
			"address":               {"Arlington"},
			"programming_languages": {"COBOL"},
			"tools":                 {"<compiler>"},
		}

		Convey("When the endpoint accepts the submission", func() {
			w := postForm(h, values)

			Convey("Then the page should be re-rendered in place with the success status", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Location"), ShouldBeEmpty)
				body := w.Body.String()
				So(body, ShouldContainSubstring, submitter.SuccessMessage)
				So(body, ShouldContainSubstring, "color: green; font-weight: bold")
			})

			Convey("And the entered values should be kept and escaped", func() {
				body := w.Body.String()
				So(body, ShouldContainSubstring, `value="Grace"`)
				So(body, ShouldContainSubstring, `value="&lt;compiler&gt;"`)
			})

			Convey("And the endpoint should have received one request with the posted values", func() {
				So(calls, ShouldEqual, 1)
				So(got["name"], ShouldEqual, "Grace")
				So(got["phone"], ShouldEqual, "")
				So(got["tools"], ShouldEqual, "<compiler>")
				So(origin, ShouldEqual, "http://example.com")
			})
		})

		Convey("When the endpoint fails with 500", func() {
			status = http.StatusInternalServerError
			w := postForm(h, values)

			Convey("Then the status element should show the code in the failure style", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "Error: Error occurred. Status: 500")
				So(body, ShouldContainSubstring, "color: red; font-weight: bold")
			})
		})
	})

	Convey("Given a submitter that leaves the default action alone", t, func() {
		sub := &ignoringSubmitter{}
		h := New(sub, WithLogger(logger.Nop()))
		w := postForm(h, url.Values{"name": {"x"}})

		Convey("Then the browser's own navigation should happen", func() {
			So(sub.calls, ShouldEqual, 1)
			So(w.Code, ShouldEqual, http.StatusSeeOther)
			So(w.Header().Get("Location"), ShouldEqual, "/")
		})
	})
}

func TestRegister(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil, New(&ignoringSubmitter{}, WithLogger(logger.Nop()))) }, ShouldPanic)
	})

	Convey("Given a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux, New(&ignoringSubmitter{}, WithLogger(logger.Nop())))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		So(w.Code, ShouldEqual, http.StatusOK)
	})
}

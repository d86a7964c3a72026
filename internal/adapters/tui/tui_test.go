package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/formpost/internal/domain/model"
	"github.com/okian/formpost/internal/submitter"
)

// stubSubmitter renders a canned result and remembers the forms it saw.
type stubSubmitter struct {
	mu      sync.Mutex
	result  submitter.Result
	prevent bool
	forms   []model.SubmissionRecord
}

func (s *stubSubmitter) HandleSubmit(_ context.Context, ev submitter.Event, form submitter.Form, display submitter.StatusDisplay) submitter.Result {
	if s.prevent {
		ev.PreventDefault()
	}
	s.mu.Lock()
	s.forms = append(s.forms, submitter.ReadRecord(form))
	s.mu.Unlock()
	submitter.Render(display, s.result)
	return s.result
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func fill(m *Model, values ...string) {
	for i, v := range values {
		m.inputs[i].SetValue(v)
	}
}

// run feeds msg to m and resolves the returned command once.
func run(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestSubmit(t *testing.T) {
	Convey("Given a filled terminal form", t, func() {
		sub := &stubSubmitter{result: submitter.Result{Outcome: submitter.Success}, prevent: true}
		m := New(context.Background(), sub)
		fill(m, "Linus", "linus@example.com", "555", "Helsinki", "C", "git")

		Convey("When pressing ctrl+s", func() {
			cmd := run(m, key(tea.KeyCtrlS))
			So(cmd, ShouldNotBeNil)

			Convey("Then the status should say submitting until the result arrives", func() {
				So(m.View(), ShouldContainSubstring, "Submitting...")
			})

			Convey("And the submitted form should hold the values at submit time", func() {
				msg := cmd()
				So(sub.forms, ShouldHaveLength, 1)
				So(sub.forms[0].Name, ShouldEqual, "Linus")
				So(sub.forms[0].Tools, ShouldEqual, "git")

				run(m, msg)
				So(m.Text(), ShouldEqual, submitter.SuccessMessage)
				So(m.Style(), ShouldResemble, submitter.SuccessStyle)
				So(m.View(), ShouldContainSubstring, submitter.SuccessMessage)
			})

			Convey("And the inputs should keep their values", func() {
				run(m, cmd())
				So(m.inputs[0].Value(), ShouldEqual, "Linus")
			})
		})

		Convey("When the submit fails", func() {
			sub.result = submitter.Result{Outcome: submitter.Failure, Err: errors.New("Error occurred. Status: 500")}
			cmd := run(m, key(tea.KeyCtrlS))
			run(m, cmd())

			Convey("Then the failure should be shown in the failure style", func() {
				So(m.Text(), ShouldEqual, "Error: Error occurred. Status: 500")
				So(m.Style(), ShouldResemble, submitter.FailureStyle)
			})
		})

		Convey("When submitting twice before either result arrives", func() {
			first := run(m, key(tea.KeyCtrlS))
			m.inputs[0].SetValue("Linus T")
			second := run(m, key(tea.KeyCtrlS))

			sub.result = submitter.Result{Outcome: submitter.Failure, Err: errors.New("late")}
			secondMsg := second()
			sub.result = submitter.Result{Outcome: submitter.Success}
			firstMsg := first()

			run(m, secondMsg)
			run(m, firstMsg)

			Convey("Then both should be sent and the last to resolve should win", func() {
				So(sub.forms, ShouldHaveLength, 2)
				So(sub.forms[0].Name, ShouldEqual, "Linus T")
				So(sub.forms[1].Name, ShouldEqual, "Linus")
				So(m.Text(), ShouldEqual, submitter.SuccessMessage)
				So(m.inFlight, ShouldEqual, 0)
			})
		})

		Convey("When the handler does not take ownership of the event", func() {
			sub.prevent = false
			cmd := run(m, key(tea.KeyCtrlS))
			m.setFocus(2)
			blink := run(m, cmd())

			Convey("Then the form should be reset like a reload", func() {
				So(m.inputs[0].Value(), ShouldEqual, "")
				So(m.focus, ShouldEqual, 0)
				So(m.inputs[0].Focused(), ShouldBeTrue)
			})

			Convey("And the refocused cursor should be told to blink", func() {
				So(blink, ShouldNotBeNil)
			})
		})
	})
}

func TestNavigation(t *testing.T) {
	Convey("Given a fresh terminal form", t, func() {
		m := New(context.Background(), &stubSubmitter{prevent: true})

		Convey("Then the first field should be focused", func() {
			So(m.focus, ShouldEqual, 0)
			So(m.inputs[0].Focused(), ShouldBeTrue)
		})

		Convey("When pressing tab and shift+tab", func() {
			run(m, key(tea.KeyTab))
			So(m.focus, ShouldEqual, 1)
			So(m.inputs[0].Focused(), ShouldBeFalse)
			run(m, key(tea.KeyShiftTab))
			run(m, key(tea.KeyShiftTab))
			So(m.focus, ShouldEqual, len(submitter.Fields)-1)
		})

		Convey("When pressing enter before the last field", func() {
			run(m, key(tea.KeyEnter))
			So(m.focus, ShouldEqual, 1)
		})

		Convey("When pressing enter on the last field", func() {
			m.setFocus(len(m.inputs) - 1)
			cmd := run(m, key(tea.KeyEnter))

			Convey("Then it should submit", func() {
				So(cmd, ShouldNotBeNil)
				So(m.inFlight, ShouldEqual, 1)
			})
		})

		Convey("When typing", func() {
			run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Ada")})
			So(m.inputs[0].Value(), ShouldEqual, "Ada")
		})

		Convey("When pressing esc", func() {
			cmd := run(m, key(tea.KeyEsc))

			Convey("Then the program should quit", func() {
				So(cmd, ShouldNotBeNil)
				So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
				So(m.View(), ShouldEqual, "")
			})
		})
	})
}

func TestStatusLineRender(t *testing.T) {
	Convey("Given a status line with an unknown colour", t, func() {
		s := &statusLine{}
		s.SetText("hello")
		s.SetStyle(submitter.Style{Color: "#FF00FF"})
		So(s.render(), ShouldContainSubstring, "hello")
	})
}

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/comptrack/internal/adapters/http/api"
	"github.com/okian/comptrack/internal/adapters/ledger"
	"github.com/okian/comptrack/internal/adapters/sheet"
	"github.com/okian/comptrack/internal/domain/aggregate"
	"github.com/okian/comptrack/internal/domain/model"
	"github.com/okian/comptrack/internal/domain/types"
	"github.com/okian/comptrack/internal/domain/upsert"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	compositions []model.CompositionStat
	artefacts    []model.ArtefactStat
	games        []model.GameEntry
	reminders    []model.ReminderEvent
	edited       bool
	submitErr    error
	summaryErr   error
	reminderErr  error
	sheetErr     error

	augmentPatch string
	augmentSlot  int
	augmentCompo string
	lastCarry    string
}

func (m *mockDeps) SubmitComposition(ctx context.Context, stat model.CompositionStat) (bool, error) {
	if m.submitErr != nil {
		return false, m.submitErr
	}
	m.compositions = append(m.compositions, stat)
	return m.edited, nil
}

func (m *mockDeps) SubmitArtefact(ctx context.Context, stat model.ArtefactStat) (bool, error) {
	if m.submitErr != nil {
		return false, m.submitErr
	}
	m.artefacts = append(m.artefacts, stat)
	return m.edited, nil
}

func (m *mockDeps) SubmitCondition(ctx context.Context, compo, name string, placement float64) (model.ConditionEntry, error) {
	if m.submitErr != nil {
		return model.ConditionEntry{}, m.submitErr
	}
	return model.ConditionEntry{
		Composition: compo,
		Name:        name,
		Placement:   placement,
		Base:        4.30,
		Delta:       placement - 4.30,
		Tier:        "S-Tier",
	}, nil
}

func (m *mockDeps) SubmitGame(ctx context.Context, entry model.GameEntry, mine bool) (int, error) {
	if m.submitErr != nil {
		return 0, m.submitErr
	}
	m.games = append(m.games, entry)
	return len(m.games), nil
}

func (m *mockDeps) CompositionSummary(ctx context.Context, patch string) (types.CompositionReport, error) {
	if m.summaryErr != nil {
		return types.CompositionReport{}, m.summaryErr
	}
	return types.CompositionReport{Patch: patch}, nil
}

func (m *mockDeps) ArtefactSummary(ctx context.Context, patch string) (types.ArtefactReport, error) {
	if m.summaryErr != nil {
		return types.ArtefactReport{}, m.summaryErr
	}
	return types.ArtefactReport{Patch: patch}, nil
}

func (m *mockDeps) ArtefactByCharacter(ctx context.Context, patch string) (types.ArtefactByCharacterReport, error) {
	if m.summaryErr != nil {
		return types.ArtefactByCharacterReport{}, m.summaryErr
	}
	return types.ArtefactByCharacterReport{Patch: patch}, nil
}

func (m *mockDeps) ConditionSummary(ctx context.Context, compo string) (types.ConditionReport, error) {
	if m.summaryErr != nil {
		return types.ConditionReport{}, m.summaryErr
	}
	return types.ConditionReport{Composition: compo, Base: 4.30}, nil
}

func (m *mockDeps) AugmentSummary(ctx context.Context, patch string, slot int, compo string) (types.AugmentReport, error) {
	if m.summaryErr != nil {
		return types.AugmentReport{}, m.summaryErr
	}
	m.augmentPatch, m.augmentSlot, m.augmentCompo = patch, slot, compo
	return types.AugmentReport{Patch: patch, Slot: slot, Compo: compo}, nil
}

func (m *mockDeps) GlobalSummary(ctx context.Context) (types.GlobalReport, error) {
	if m.summaryErr != nil {
		return types.GlobalReport{}, m.summaryErr
	}
	return types.GlobalReport{Rendered: "COMPOSITIONS"}, nil
}

func (m *mockDeps) AddReminder(ctx context.Context, event model.ReminderEvent) error {
	if m.reminderErr != nil {
		return m.reminderErr
	}
	m.reminders = append(m.reminders, event)
	return nil
}

func (m *mockDeps) ListReminders(ctx context.Context) ([]model.ReminderEvent, error) {
	if m.reminderErr != nil {
		return nil, m.reminderErr
	}
	return m.reminders, nil
}

func (m *mockDeps) EditReminder(ctx context.Context, name string, upd ledger.Update) error {
	return m.reminderErr
}

func (m *mockDeps) DeleteReminder(ctx context.Context, name string) error {
	return m.reminderErr
}

func (m *mockDeps) DispatchChecklist(ctx context.Context) ([]model.ReminderEvent, error) {
	if m.reminderErr != nil {
		return nil, m.reminderErr
	}
	return m.reminders, nil
}

func (m *mockDeps) RolloverUnfinished(ctx context.Context) (int, error) {
	if m.reminderErr != nil {
		return 0, m.reminderErr
	}
	return len(m.reminders), nil
}

func (m *mockDeps) SheetCompositions() []string {
	return []string{"frost", "sg"}
}

func (m *mockDeps) SheetInfo(compo string) (sheet.CompoInfo, error) {
	if m.sheetErr != nil {
		return sheet.CompoInfo{}, m.sheetErr
	}
	return sheet.CompoInfo{Name: compo, Avg: "4.05", WinRate: "18%", Top4Rate: "61%"}, nil
}

func (m *mockDeps) SheetBuilds(compo, carry string) ([]sheet.BuildRow, error) {
	if m.sheetErr != nil {
		return nil, m.sheetErr
	}
	m.lastCarry = carry
	return []sheet.BuildRow{{Items: [3]string{"B.F. Sword", "Recurve Bow", "Chain Vest"}, Avg: "4.10"}}, nil
}

func (m *mockDeps) SheetArtefacts(compo, carry string) ([]sheet.ArtefactRow, error) {
	if m.sheetErr != nil {
		return nil, m.sheetErr
	}
	m.lastCarry = carry
	return []sheet.ArtefactRow{{Artefact: "Deathblade", Avg: "3.90"}}, nil
}

func (m *mockDeps) SheetRadiants(compo, carry string) ([]sheet.RadiantRow, error) {
	if m.sheetErr != nil {
		return nil, m.sheetErr
	}
	m.lastCarry = carry
	return []sheet.RadiantRow{{Radiant: "Radiant Deathblade", Avg: "3.60"}}, nil
}

func (m *mockDeps) SheetConditions(compo string) ([]sheet.ConditionRow, error) {
	if m.sheetErr != nil {
		return nil, m.sheetErr
	}
	return []sheet.ConditionRow{{Condition: "No augment", Avg: "4.55"}}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"channels": 3}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServerRegister(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("The health endpoint reports ok", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("The stats endpoint returns the provider payload", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "channels")
		})
	})
}

func TestRecordEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("A valid composition submission is acknowledged", func() {
			w := do(mux, "POST", "/compositions",
				`{"name":"SG","avg_placement":"4.05","win_rate":"18%","top4_rate":"61%","patch":"13.1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.compositions, ShouldHaveLength, 1)
			So(deps.compositions[0].AvgPlacement, ShouldAlmostEqual, 4.05, 1e-9)
			So(deps.compositions[0].WinRate, ShouldEqual, "18%")
			So(w.Body.String(), ShouldContainSubstring, "created")
		})

		Convey("A resubmission reports the edited status", func() {
			deps.edited = true
			w := do(mux, "POST", "/compositions",
				`{"name":"SG","avg_placement":"4.20","win_rate":"18%","top4_rate":"61%","patch":"13.1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "edited")
		})

		Convey("A non-decimal average is rejected", func() {
			w := do(mux, "POST", "/compositions",
				`{"name":"SG","avg_placement":"four","win_rate":"18%","top4_rate":"61%","patch":"13.1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.compositions, ShouldBeEmpty)
		})

		Convey("Malformed JSON is rejected", func() {
			w := do(mux, "POST", "/compositions", `{"name":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET on a write endpoint is not found", func() {
			w := do(mux, "GET", "/compositions", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("An artefact submission records the verbatim delta", func() {
			w := do(mux, "POST", "/artefacts",
				`{"artefact":"Deathblade","character":"Akali","avg":"3.90","delta":"-0.25","patch":"13.1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.artefacts, ShouldHaveLength, 1)
			So(deps.artefacts[0].Delta, ShouldEqual, "-0.25")
		})

		Convey("A condition submission returns the computed delta and tier", func() {
			w := do(mux, "POST", "/conditions",
				`{"composition":"Akali","name":"No items","placement":"4.11"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var entry model.ConditionEntry
			So(json.Unmarshal(w.Body.Bytes(), &entry), ShouldBeNil)
			So(entry.Delta, ShouldAlmostEqual, -0.19, 1e-9)
			So(entry.Tier, ShouldEqual, "S-Tier")
		})

		Convey("A condition for an unknown composition is not found", func() {
			deps.submitErr = upsert.ErrCompositionUnknown
			w := do(mux, "POST", "/conditions",
				`{"composition":"Nope","name":"No items","placement":"4.11"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A game submission returns the assigned sequence number", func() {
			w := do(mux, "POST", "/games",
				`{"composition":"SG","placement":"3","augments":["Cybernetic Uplink"],"patch":"13.1","mine":true}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.games, ShouldHaveLength, 1)
			So(deps.games[0].Placement, ShouldEqual, 3)
			So(deps.games[0].Augments[0], ShouldEqual, "Cybernetic Uplink")
			So(w.Body.String(), ShouldContainSubstring, `"seq":1`)
			So(w.Body.String(), ShouldContainSubstring, `"win":false`)
			So(w.Body.String(), ShouldContainSubstring, `"top4":true`)
		})

		Convey("An unparseable placement falls back to the sentinel", func() {
			w := do(mux, "POST", "/games",
				`{"composition":"SG","placement":"third","augments":[],"patch":"13.1","mine":false}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.games[0].Placement, ShouldEqual, 9)
		})

		Convey("More than three augments are rejected", func() {
			w := do(mux, "POST", "/games",
				`{"composition":"SG","placement":"3","augments":["a","b","c","d"],"patch":"13.1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSummaryEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("The composition summary passes the patch filter through", func() {
			w := do(mux, "GET", "/summary/compositions?patch=13.1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "13.1")
		})

		Convey("A missing patch defaults to the no-filter sentinel", func() {
			w := do(mux, "GET", "/summary/compositions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"patch":"0"`)
		})

		Convey("An empty store maps to 404", func() {
			deps.summaryErr = aggregate.ErrNoData
			w := do(mux, "GET", "/summary/artefacts", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("The condition summary takes the composition from the path", func() {
			w := do(mux, "GET", "/summary/conditions/akali", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "akali")
		})

		Convey("A missing composition segment is a bad request", func() {
			w := do(mux, "GET", "/summary/conditions/", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The augment summary forwards all three filters", func() {
			w := do(mux, "GET", "/summary/augments?patch=13.1&slot=2&compo=sg", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.augmentPatch, ShouldEqual, "13.1")
			So(deps.augmentSlot, ShouldEqual, 2)
			So(deps.augmentCompo, ShouldEqual, "sg")
		})

		Convey("A non-numeric slot is a bad request", func() {
			w := do(mux, "GET", "/summary/augments?slot=first", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An out-of-range slot maps to 400", func() {
			deps.summaryErr = aggregate.ErrBadFilter
			w := do(mux, "GET", "/summary/augments?slot=4", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The global summary includes the rendered tables", func() {
			w := do(mux, "GET", "/summary/global", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "COMPOSITIONS")
		})
	})
}

func TestReminderEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("Adding a reminder parses the date and repeat mode", func() {
			w := do(mux, "POST", "/reminders",
				`{"name":"Sport","date":"2026-03-10T18:30:00","repeat":"weekly"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.reminders, ShouldHaveLength, 1)
			So(deps.reminders[0].Repeat, ShouldEqual, model.RepeatWeekly)
			So(deps.reminders[0].Date.Hour(), ShouldEqual, 18)
		})

		Convey("An RFC3339 date is accepted as well", func() {
			w := do(mux, "POST", "/reminders",
				`{"name":"Dentist","date":"2026-03-10T09:00:00Z"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.reminders[0].Repeat, ShouldEqual, model.RepeatNone)
		})

		Convey("A malformed date is rejected", func() {
			w := do(mux, "POST", "/reminders",
				`{"name":"Sport","date":"next tuesday"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.reminders, ShouldBeEmpty)
		})

		Convey("Listing returns the stored events", func() {
			deps.reminders = []model.ReminderEvent{{Name: "Taxes", Date: time.Now()}}
			w := do(mux, "GET", "/reminders", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Taxes")
		})

		Convey("Editing an unknown reminder is not found", func() {
			deps.reminderErr = ledger.ErrEventNotFound
			w := do(mux, "PUT", "/reminders/nope", `{"date":"2026-03-11T10:00:00"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Deleting a reminder acknowledges", func() {
			w := do(mux, "DELETE", "/reminders/Sport", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "deleted")
		})

		Convey("A nested reminder path is a bad request", func() {
			w := do(mux, "DELETE", "/reminders/a/b", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Manual dispatch reports the delivered events", func() {
			deps.reminders = []model.ReminderEvent{{Name: "Sport", Date: time.Now()}}
			w := do(mux, "POST", "/checklist/dispatch", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Sport")
		})

		Convey("Manual rollover reports the moved count", func() {
			deps.reminders = []model.ReminderEvent{{Name: "Gym", Date: time.Now()}}
			w := do(mux, "POST", "/checklist/rollover", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"moved":1`)
		})
	})
}

func TestSheetEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("The composition list is served", func() {
			w := do(mux, "GET", "/sheet/compositions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "frost")
		})

		Convey("A section lookup forwards the carry filter", func() {
			w := do(mux, "GET", "/sheet/sg/builds?carry=Akali", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCarry, ShouldEqual, "Akali")
			So(w.Body.String(), ShouldContainSubstring, "B.F. Sword")
		})

		Convey("An unknown section is a bad request", func() {
			w := do(mux, "GET", "/sheet/sg/bogus", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown composition is not found", func() {
			deps.sheetErr = sheet.ErrUnknownComposition
			w := do(mux, "GET", "/sheet/nope/info", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/robalobadob/capsle/assets"
	"github.com/robalobadob/capsle/internal/auth"
	"github.com/robalobadob/capsle/internal/daily"
	"github.com/robalobadob/capsle/internal/db"
	"github.com/robalobadob/capsle/internal/roster"
	"github.com/robalobadob/capsle/internal/store"
)

// 2024-02-06 is day 37; with four characters the answer is vegeta.
var testNow = time.Date(2024, 2, 6, 12, 0, 0, 0, time.UTC)

func bundledLoader(t *testing.T) roster.Loader {
	t.Helper()
	data, err := assets.RosterDocument()
	if err != nil {
		t.Fatalf("reading roster: %v", err)
	}
	return roster.NewStaticLoader("roster.yaml", data, language.Spanish)
}

func newTestServer(t *testing.T, loader roster.Loader) (*httptest.Server, *Catalog) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenMigrated(ctx, filepath.Join(t.TempDir(), "app.db"), assets.Migrations())
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	cat := NewCatalog(loader)
	_, _ = cat.Reload(ctx)

	now := testNow
	srv := New(Deps{
		Catalog:  cat,
		Sessions: store.NewMemoryStore(),
		Results:  daily.NewSQLStore(conn),
		Auth:     auth.NewService(conn, auth.Options{Secret: "test", CookieName: "tok"}),
		Picker:   daily.Picker{Strategy: daily.StrategyPosition},
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, cat
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func call(t *testing.T, c *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

type newGame struct {
	GameID     string             `json:"gameId"`
	Date       string             `json:"date"`
	Played     bool               `json:"played"`
	Attributes []roster.Attribute `json:"attributes"`
}

type guessOut struct {
	Character struct {
		ID string `json:"id"`
	} `json:"character"`
	Verdicts []struct {
		Key     string `json:"key"`
		Verdict struct {
			Kind      string `json:"kind"`
			Direction string `json:"direction"`
		} `json:"verdict"`
	} `json:"verdicts"`
	Won     bool   `json:"won"`
	Guesses int    `json:"guesses"`
	Error   string `json:"error"`
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, bundledLoader(t))
	var body map[string]bool
	if code := call(t, ts.Client(), http.MethodGet, ts.URL+"/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("health = %d %v", code, body)
	}
	var nf map[string]string
	if code := call(t, ts.Client(), http.MethodGet, ts.URL+"/nope", nil, &nf); code != http.StatusNotFound || nf["error"] != "not_found" {
		t.Fatalf("not found = %d %v", code, nf)
	}
}

func TestDailyGuestFlow(t *testing.T) {
	ts, _ := newTestServer(t, bundledLoader(t))
	c := newClient(t)

	var g newGame
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &g); code != http.StatusOK {
		t.Fatalf("new = %d", code)
	}
	if g.GameID == "" || g.Date != "2024-02-06" || g.Played || len(g.Attributes) != 6 {
		t.Fatalf("new game = %+v", g)
	}

	var cands struct {
		Candidates []characterView `json:"candidates"`
	}
	call(t, c, http.MethodGet, ts.URL+"/daily/candidates?gameId="+g.GameID+"&q=GO", nil, &cands)
	if len(cands.Candidates) != 1 || cands.Candidates[0].ID != "goku" {
		t.Fatalf("candidates = %+v", cands.Candidates)
	}

	var out guessOut
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "goku"}, &out); code != http.StatusOK {
		t.Fatalf("guess goku = %d %+v", code, out)
	}
	kinds := map[string]string{}
	for _, v := range out.Verdicts {
		kinds[v.Key] = v.Verdict.Kind
	}
	if kinds["race"] != "match" || kinds["gender"] != "match" || kinds["origin"] != "mismatch" || out.Won {
		t.Fatalf("verdicts = %v won=%v", kinds, out.Won)
	}

	out = guessOut{}
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "goku"}, &out); code != http.StatusConflict || out.Error != "already_guessed" {
		t.Fatalf("repeat = %d %+v", code, out)
	}
	out = guessOut{}
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "krillin"}, &out); code != http.StatusNotFound || out.Error != "character_not_found" {
		t.Fatalf("unknown = %d %+v", code, out)
	}

	out = guessOut{}
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "Vegeta"}, &out); code != http.StatusOK || !out.Won || out.Guesses != 2 {
		t.Fatalf("winning guess = %d %+v", code, out)
	}

	var hist struct {
		Guesses []struct {
			Character struct {
				ID string `json:"id"`
			} `json:"character"`
			Correct bool `json:"correct"`
		} `json:"guesses"`
		Won bool `json:"won"`
	}
	call(t, c, http.MethodGet, ts.URL+"/daily/guesses?gameId="+g.GameID, nil, &hist)
	if len(hist.Guesses) != 2 || hist.Guesses[0].Character.ID != "vegeta" || !hist.Guesses[0].Correct || !hist.Won {
		t.Fatalf("history = %+v", hist)
	}

	var lb lbRes
	call(t, c, http.MethodGet, ts.URL+"/daily/leaderboard", nil, &lb)
	if lb.Date != "2024-02-06" || len(lb.Top) != 1 || lb.Top[0].Guesses != 2 {
		t.Fatalf("leaderboard = %+v", lb)
	}

	var again newGame
	call(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &again)
	if again.GameID != g.GameID || !again.Played {
		t.Fatalf("second new = %+v", again)
	}
}

func TestDailySessionIsPrivate(t *testing.T) {
	ts, _ := newTestServer(t, bundledLoader(t))
	alice, mallory := newClient(t), newClient(t)

	var g newGame
	call(t, alice, http.MethodPost, ts.URL+"/daily/new", nil, &g)

	var out guessOut
	code := call(t, mallory, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "goku"}, &out)
	if code != http.StatusNotFound || out.Error != "no_session" {
		t.Fatalf("foreign guess = %d %+v", code, out)
	}
	out = guessOut{}
	code = call(t, alice, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: "missing", Query: "goku"}, &out)
	if code != http.StatusNotFound || out.Error != "no_session" {
		t.Fatalf("missing session = %d %+v", code, out)
	}
	code = call(t, alice, http.MethodPost, ts.URL+"/daily/guess", map[string]string{"query": "goku"}, &out)
	if code != http.StatusBadRequest {
		t.Fatalf("missing gameId = %d", code)
	}
}

func TestRosterUnavailableAndReload(t *testing.T) {
	var calls atomic.Int32
	good := bundledLoader(t)
	loader := roster.LoaderFunc(func(ctx context.Context) (*roster.Roster, error) {
		if calls.Add(1) == 1 {
			return nil, &roster.LoadError{Source: "test", Err: errors.New("upstream down")}
		}
		return good.Load(ctx)
	})
	ts, _ := newTestServer(t, loader)
	c := newClient(t)

	var e map[string]string
	if code := call(t, c, http.MethodGet, ts.URL+"/roster", nil, &e); code != http.StatusServiceUnavailable || e["error"] != "roster_unavailable" {
		t.Fatalf("roster = %d %v", code, e)
	}
	e = nil
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &e); code != http.StatusServiceUnavailable {
		t.Fatalf("daily new without roster = %d %v", code, e)
	}

	var reload map[string]any
	if code := call(t, c, http.MethodPost, ts.URL+"/roster/reload", nil, &reload); code != http.StatusOK || reload["count"] != float64(4) {
		t.Fatalf("reload = %d %v", code, reload)
	}

	var res rosterRes
	if code := call(t, c, http.MethodGet, ts.URL+"/roster", nil, &res); code != http.StatusOK || res.Count != 4 || res.Characters[3].Name != "Freezer" {
		t.Fatalf("roster = %d %+v", code, res)
	}
}

func TestRosterReloadFailure(t *testing.T) {
	loader := roster.LoaderFunc(func(ctx context.Context) (*roster.Roster, error) {
		return nil, &roster.LoadError{Source: "test", Err: roster.ErrEmptyRoster}
	})
	ts, _ := newTestServer(t, loader)
	var e map[string]string
	if code := call(t, ts.Client(), http.MethodPost, ts.URL+"/roster/reload", nil, &e); code != http.StatusBadGateway || e["detail"] == "" {
		t.Fatalf("reload = %d %v", code, e)
	}
}

func TestAuthFlowRecordsWin(t *testing.T) {
	ts, _ := newTestServer(t, bundledLoader(t))
	c := newClient(t)

	var u map[string]any
	if code := call(t, c, http.MethodPost, ts.URL+"/auth/signup", credentialsReq{Username: "bulma", Password: "capsulecorp"}, &u); code != http.StatusCreated {
		t.Fatalf("signup = %d %v", code, u)
	}
	var e map[string]string
	if code := call(t, newClient(t), http.MethodPost, ts.URL+"/auth/signup", credentialsReq{Username: "BULMA", Password: "capsulecorp"}, &e); code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d %v", code, e)
	}
	if code := call(t, newClient(t), http.MethodPost, ts.URL+"/auth/login", credentialsReq{Username: "bulma", Password: "nope-nope"}, &e); code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", code)
	}

	var me auth.Principal
	if code := call(t, c, http.MethodGet, ts.URL+"/auth/me", nil, &me); code != http.StatusOK || me.Username != "bulma" {
		t.Fatalf("me = %d %+v", code, me)
	}

	var g newGame
	call(t, c, http.MethodPost, ts.URL+"/daily/new", nil, &g)
	var out guessOut
	if code := call(t, c, http.MethodPost, ts.URL+"/daily/guess", dailyGuessReq{GameID: g.GameID, Query: "vegeta"}, &out); code != http.StatusOK || !out.Won {
		t.Fatalf("guess = %d %+v", code, out)
	}

	var stats map[string]any
	call(t, c, http.MethodGet, ts.URL+"/stats/me", nil, &stats)
	if stats["wins"] != float64(1) || stats["streak"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}

	var lb lbRes
	call(t, c, http.MethodGet, ts.URL+"/daily/leaderboard?date=2024-02-06", nil, &lb)
	if len(lb.Top) != 1 || lb.Top[0].Username != "bulma" {
		t.Fatalf("leaderboard = %+v", lb)
	}

	call(t, c, http.MethodPost, ts.URL+"/auth/logout", nil, nil)
	if code := call(t, c, http.MethodGet, ts.URL+"/stats/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("stats after logout = %d", code)
	}
}

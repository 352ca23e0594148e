package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
)

// fakeStore is an in-memory stand-in for the hosted PostgREST endpoint. It
// understands the subset of the REST dialect the handlers emit (eq, gte,
// lte, ilike, in, or, order, limit) and enforces the same uniqueness rules
// the production schema carries.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	seq    int

	// failNext makes the next request against the named table fail with a
	// plain 500, to exercise degraded paths.
	failNext map[string]bool
	// stall makes every request against the named table hang longer than
	// any test timeout, to exercise the bounded-wait path.
	stall map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:   make(map[string][]map[string]interface{}),
		failNext: make(map[string]bool),
		stall:    make(map[string]time.Duration),
	}
}

func (f *fakeStore) insertRow(table string, row map[string]interface{}) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertRowLocked(table, row)
}

func (f *fakeStore) insertRowLocked(table string, row map[string]interface{}) map[string]interface{} {
	stored := make(map[string]interface{}, len(row)+2)
	for k, v := range row {
		stored[k] = v
	}
	if _, ok := stored["id"]; !ok {
		f.seq++
		stored["id"] = fmt.Sprintf("row-%d", f.seq)
	}
	if _, ok := stored["created_at"]; !ok {
		f.seq++
		// Strictly increasing timestamps so created_at ordering is stable.
		stored["created_at"] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(f.seq) * time.Second).Format(time.RFC3339)
	}
	f.tables[table] = append(f.tables[table], stored)
	return stored
}

func (f *fakeStore) rows(table string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]interface{}, len(f.tables[table]))
	copy(out, f.tables[table])
	return out
}

func (f *fakeStore) violatesUnique(table string, row map[string]interface{}) bool {
	uniqueKeys := map[string][]string{
		"users": {"email"},
		"slots": {"clinic_id", "date", "time", "doctor_name"},
	}
	keys, ok := uniqueKeys[table]
	if !ok {
		return false
	}
	for _, existing := range f.tables[table] {
		same := true
		for _, k := range keys {
			if str(existing[k]) != str(row[k]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func (f *fakeStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		table = strings.Trim(table, "/")

		f.mu.Lock()
		if d, ok := f.stall[table]; ok {
			f.mu.Unlock()
			time.Sleep(d)
			f.mu.Lock()
		}
		if f.failNext[table] {
			delete(f.failNext, table)
			f.mu.Unlock()
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":"XX000","message":"internal error"}`)
			return
		}
		defer f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			matched := f.filterLocked(table, r.URL.Query())
			writeJSON(w, http.StatusOK, matched)

		case http.MethodPost:
			var row map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if f.violatesUnique(table, row) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
				return
			}
			stored := f.insertRowLocked(table, row)
			writeJSON(w, http.StatusCreated, []map[string]interface{}{stored})

		case http.MethodPatch:
			var patch map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			matched := f.filterLocked(table, r.URL.Query())
			ids := make(map[string]bool, len(matched))
			for _, row := range matched {
				ids[str(row["id"])] = true
			}
			updated := []map[string]interface{}{}
			for _, row := range f.tables[table] {
				if ids[str(row["id"])] {
					for k, v := range patch {
						row[k] = v
					}
					updated = append(updated, row)
				}
			}
			writeJSON(w, http.StatusOK, updated)

		case http.MethodDelete:
			matched := f.filterLocked(table, r.URL.Query())
			ids := make(map[string]bool, len(matched))
			for _, row := range matched {
				ids[str(row["id"])] = true
			}
			kept := f.tables[table][:0]
			for _, row := range f.tables[table] {
				if !ids[str(row["id"])] {
					kept = append(kept, row)
				}
			}
			f.tables[table] = kept
			writeJSON(w, http.StatusOK, matched)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// filterLocked applies the query-string filters, order and limit to a table.
func (f *fakeStore) filterLocked(table string, params map[string][]string) []map[string]interface{} {
	matched := []map[string]interface{}{}
	for _, row := range f.tables[table] {
		if rowMatches(row, params) {
			matched = append(matched, row)
		}
	}

	for _, orderVal := range params["order"] {
		applyOrder(matched, orderVal)
	}

	if limits, ok := params["limit"]; ok && len(limits) > 0 {
		if n, err := strconv.Atoi(limits[0]); err == nil && n < len(matched) {
			matched = matched[:n]
		}
	}
	return matched
}

func rowMatches(row map[string]interface{}, params map[string][]string) bool {
	for key, values := range params {
		switch key {
		case "select", "order", "limit", "offset", "apikey":
			continue
		case "or":
			for _, v := range values {
				if !orMatches(row, v) {
					return false
				}
			}
		default:
			for _, v := range values {
				if !condMatches(row, key, v) {
					return false
				}
			}
		}
	}
	return true
}

func orMatches(row map[string]interface{}, expr string) bool {
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")
	for _, cond := range strings.Split(expr, ",") {
		parts := strings.SplitN(cond, ".", 2)
		if len(parts) == 2 && condMatches(row, parts[0], parts[1]) {
			return true
		}
	}
	return false
}

func condMatches(row map[string]interface{}, column, cond string) bool {
	parts := strings.SplitN(cond, ".", 2)
	if len(parts) != 2 {
		return false
	}
	op, arg := parts[0], parts[1]
	val := str(row[column])

	switch op {
	case "eq":
		return val == arg
	case "gte":
		return val >= arg
	case "lte":
		return val <= arg
	case "ilike":
		needle := strings.Trim(arg, "%*")
		return strings.Contains(strings.ToLower(val), strings.ToLower(needle))
	case "in":
		arg = strings.TrimPrefix(arg, "(")
		arg = strings.TrimSuffix(arg, ")")
		for _, candidate := range strings.Split(arg, ",") {
			if val == strings.Trim(strings.TrimSpace(candidate), `"`) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func applyOrder(rows []map[string]interface{}, orderVal string) {
	for _, clause := range strings.Split(orderVal, ",") {
		tokens := strings.Split(clause, ".")
		if len(tokens) == 0 {
			continue
		}
		column := tokens[0]
		descending := false
		for _, t := range tokens[1:] {
			if t == "desc" {
				descending = true
			}
		}
		stableSortBy(rows, column, descending)
	}
}

func stableSortBy(rows []map[string]interface{}, column string, descending bool) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0; j-- {
			a, b := str(rows[j-1][column]), str(rows[j][column])
			swap := a > b
			if descending {
				swap = a < b
			}
			if !swap {
				break
			}
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// testEnv wires a fake store, a real Supabase client pointed at it, and a
// config with a short query timeout.
type testEnv struct {
	store    *fakeStore
	supabase *supa.Client
	cfg      *config.Config
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	server := httptest.NewServer(store.handler())
	t.Cleanup(server.Close)

	client, err := supa.NewClient(server.URL, "test-anon-key", nil)
	require.NoError(t, err)

	return &testEnv{
		store:    store,
		supabase: client,
		cfg: &config.Config{
			SupabaseURL:  server.URL,
			SupabaseKey:  "test-anon-key",
			JWTSecret:    "test-secret",
			QueryTimeout: 2 * time.Second,
		},
		server: server,
	}
}

func strPtr(s string) *string { return &s }

func mustParseTime(t *testing.T, v string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t.Fatalf("parse time %q: %v", v, err)
	}
	return parsed
}

func floatPtr(f float64) *float64 { return &f }

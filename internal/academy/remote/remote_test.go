package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestAirtableAuthority(t *testing.T) {
	t.Parallel()

	t.Run("FetchStatusParsesStringFlags", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Contains(t, r.URL.Query().Get("filterByFormula"), "9834252755")
			writeJSON(t, w, map[string]any{
				"records": []map[string]any{{
					"id": "recABC",
					"fields": map[string]any{
						"Acceptance":         "True",
						"Subscription Pause": "No",
					},
				}},
			})
		}))
		defer srv.Close()

		a := NewAirtableAuthority(srv.URL, "tok", "appBase", "Profiles")
		status, err := a.FetchStatus(context.Background(), "9834252755")
		require.NoError(t, err)
		require.True(t, status.Accepted)
		require.False(t, status.Paused)
	})

	t.Run("FetchStatusMissing", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"records": []any{}})
		}))
		defer srv.Close()

		a := NewAirtableAuthority(srv.URL, "tok", "appBase", "Profiles")
		_, err := a.FetchStatus(context.Background(), "9834252755")
		require.ErrorIs(t, err, ErrProfileMissing)
	})

	t.Run("UpsertCreatesWhenAbsent", func(t *testing.T) {
		t.Parallel()

		var created map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				writeJSON(t, w, map[string]any{"records": []any{}})
			case http.MethodPost:
				require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
				w.WriteHeader(http.StatusOK)
			default:
				t.Errorf("unexpected method %s", r.Method)
			}
		}))
		defer srv.Close()

		a := NewAirtableAuthority(srv.URL, "tok", "appBase", "Profiles")
		err := a.UpsertProfile(context.Background(), Profile{Phone: "9834252755", Name: "Sunrise Academy"})
		require.NoError(t, err)

		records := created["records"].([]any)
		require.Len(t, records, 1)
		fields := records[0].(map[string]any)["fields"].(map[string]any)
		require.Equal(t, "Sunrise Academy", fields["Institute / Academy Name"])
		require.Equal(t, "False", fields["Acceptance"])
		require.Equal(t, "No", fields["Subscription Pause"])
	})

	t.Run("UpsertPatchesNameOnlyWhenPresent", func(t *testing.T) {
		t.Parallel()

		var patched map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				writeJSON(t, w, map[string]any{
					"records": []map[string]any{{"id": "recABC", "fields": map[string]any{}}},
				})
			case http.MethodPatch:
				require.Contains(t, r.URL.Path, "recABC")
				require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
				w.WriteHeader(http.StatusOK)
			default:
				t.Errorf("unexpected method %s", r.Method)
			}
		}))
		defer srv.Close()

		a := NewAirtableAuthority(srv.URL, "tok", "appBase", "Profiles")
		err := a.UpsertProfile(context.Background(), Profile{Phone: "9834252755", Name: "Renamed Academy"})
		require.NoError(t, err)

		fields := patched["fields"].(map[string]any)
		require.Equal(t, "Renamed Academy", fields["Institute / Academy Name"])
		require.NotContains(t, fields, "Acceptance")
	})

	t.Run("SubmitRequestNeedsProfile", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"records": []any{}})
		}))
		defer srv.Close()

		a := NewAirtableAuthority(srv.URL, "tok", "appBase", "Profiles")
		err := a.SubmitRequest(context.Background(), Profile{Phone: "9834252755"})
		require.ErrorIs(t, err, ErrProfileMissing)
	})
}

func TestSheetsAuthority(t *testing.T) {
	t.Parallel()

	t.Run("FetchStatus", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "getStatus", r.URL.Query().Get("action"))
			writeJSON(t, w, map[string]any{
				"mobile":     r.URL.Query().Get("mobile"),
				"acceptance": "True",
				"pause":      "Yes",
			})
		}))
		defer srv.Close()

		s := NewSheetsAuthority(srv.URL)
		status, err := s.FetchStatus(context.Background(), "9834252755")
		require.NoError(t, err)
		require.True(t, status.Accepted)
		require.True(t, status.Paused)
	})

	t.Run("FetchStatusEmptyRowIsMissing", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{})
		}))
		defer srv.Close()

		s := NewSheetsAuthority(srv.URL)
		_, err := s.FetchStatus(context.Background(), "9834252755")
		require.ErrorIs(t, err, ErrProfileMissing)
	})

	t.Run("SubmitRequestPostsAction", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
		defer srv.Close()

		s := NewSheetsAuthority(srv.URL)
		require.NoError(t, s.SubmitRequest(context.Background(), Profile{Phone: "9834252755", Name: "Sunrise"}))
		require.Equal(t, "updateRequest", got["action"])
		require.Equal(t, "send request", got["requestStatus"])
	})
}

func TestSupabaseAuthority(t *testing.T) {
	t.Parallel()

	t.Run("UpsertMergesOnMobile", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/rest/v1/profiles", r.URL.Path)
			require.Equal(t, "mobile", r.URL.Query().Get("on_conflict"))
			require.Equal(t, "resolution=merge-duplicates", r.Header.Get("Prefer"))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		s := NewSupabaseAuthority(srv.URL, "anon-key")
		err := s.UpsertProfile(context.Background(), Profile{Phone: "9834252755", Name: "Sunrise"})
		require.NoError(t, err)
	})

	t.Run("FetchStatus", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "eq.9834252755", r.URL.Query().Get("mobile"))
			writeJSON(t, w, []map[string]any{{
				"mobile":     "9834252755",
				"acceptance": true,
				"paused":     false,
			}})
		}))
		defer srv.Close()

		s := NewSupabaseAuthority(srv.URL, "anon-key")
		status, err := s.FetchStatus(context.Background(), "9834252755")
		require.NoError(t, err)
		require.True(t, status.Accepted)
		require.False(t, status.Paused)
	})

	t.Run("FetchStatusMissing", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []any{})
		}))
		defer srv.Close()

		s := NewSupabaseAuthority(srv.URL, "anon-key")
		_, err := s.FetchStatus(context.Background(), "9834252755")
		require.ErrorIs(t, err, ErrProfileMissing)
	})
}

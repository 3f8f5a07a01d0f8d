package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store/drivers/sqlite"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/linkx"
)

// newTestServer wires the full router against an in-memory database and a
// disabled remote authority.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.DiscardHandler)
	reconciler := service.NewReconciler(st, remote.Disabled{}, time.Second)
	t.Cleanup(reconciler.Close)

	router := NewRouter("test", st, logger)
	router.LoginService = &service.LoginService{
		Store:      st,
		Reconciler: reconciler,
		AdminName:  "headoffice",
		AdminPhone: "9000000000",
	}
	router.EntitlementService = &service.EntitlementService{
		Store:          st,
		Authority:      remote.Disabled{},
		ActivationCode: "UNLOCK2024",
	}
	router.LinkService = &service.LinkService{Store: st, JoinBaseURL: "http://localhost/join"}
	router.RecordsService = &service.RecordsService{Store: st}
	router.AdminService = &service.AdminService{Store: st}
	router.Reconciler = reconciler
	router.AdminPhone = "9000000000"
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&parsed)
	}
	return resp, parsed
}

func TestLoginPlanAndAdminFlow(t *testing.T) {
	srv := newTestServer(t)

	// Unauthenticated plan read is refused.
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/plan", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// First login creates a FREE owner.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "Wisdom Academy", "phone": "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "owner", body["role"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/plan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "FREE", body["state"])

	// Request activation; the response carries the messaging link.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/plan/request", map[string]int{"months": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body["notify_link"], "api.whatsapp.com")
	requestID := body["request"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/plan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "PENDING", body["state"])

	// Admin endpoints are refused for the owner session.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/admin/stats", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The administrator logs in and accepts the request.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "HeadOffice", "phone": "9000000000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/admin/requests/"+requestID+"/accept", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body["notify_link"], "919000000001")

	// Back as the owner: the plan is now active with the raised quota.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "Wisdom Academy", "phone": "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/plan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ACTIVE", body["state"])
	account := body["account"].(map[string]any)
	require.Equal(t, float64(99999), account["student_quota"])
}

func TestActivationCodeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "Wisdom Academy", "phone": "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/plan/activate", map[string]string{"code": "nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/plan/activate", map[string]string{"code": "unlock2024"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "subscribed", body["plan"])
}

func TestLinkEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "Wisdom Academy", "phone": "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// No code yet, so no join link either.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/link/join-url", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/v1/link/code", map[string]string{"code": "1234"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/link/join-url", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body["url"], "action=join")

	// A teacher redeems the code without being logged in.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/link/redeem", map[string]string{
		"name": "Asha", "phone": "9000000002", "code": "1234",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "teacher", body["role"])
	require.Equal(t, "9000000001", body["linked_owner"])

	// Prepopulating from a join link seeds an unknown owner.
	joinLink := linkx.Encode("http://localhost/join", linkx.JoinInvite{
		OwnerPhone: "9000000009",
		OwnerName:  "Lakeside",
		AccessCode: "lk99",
	})
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/link/prepopulate", map[string]string{"url": joinLink})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStudentQuotaOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/login", map[string]string{
		"name": "Wisdom Academy", "phone": "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < 6; i++ {
		resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/students", map[string]any{
			"name": "Student", "fees_total": 1000,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/students", map[string]any{"name": "Seventh"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "quota_exceeded", body["error"])
}

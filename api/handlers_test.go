package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timepay-engine/api"
	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/store/sqlite"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := api.NewHandler(st, ledger.New(st, nil), nil)
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestProcessClockData_Endpoint(t *testing.T) {
	// GIVEN: a clean Monday of punches
	srv := newServer(t)
	req := map[string]any{
		"employee_id": "emp-1",
		"punches": []map[string]string{
			{"timestamp": "2025-03-10 07:28:00", "device": "MAIN-IN"},
			{"timestamp": "2025-03-10 12:01:00", "device": "MAIN-OUT"},
			{"timestamp": "2025-03-10 12:29:00", "device": "MAIN-IN"},
			{"timestamp": "2025-03-10 16:30:00", "device": "MAIN-OUT"},
		},
	}

	// WHEN: processing
	resp := postJSON(t, srv.URL+"/api/attendance/process", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN: a normal 8.5-hour day comes back
	var result struct {
		Hours          int `json:"hours"`
		Minutes        int `json:"minutes"`
		DailyBreakdown []struct {
			Scenario string `json:"scenario"`
		} `json:"daily_breakdown"`
	}
	decode(t, resp, &result)
	assert.Equal(t, 8, result.Hours)
	assert.Equal(t, 30, result.Minutes)
	require.Len(t, result.DailyBreakdown, 1)
	assert.Equal(t, "normal", result.DailyBreakdown[0].Scenario)
}

func TestProcessClockData_RuleOverride(t *testing.T) {
	// GIVEN: a punch that is late under default grace but fine with 10 minutes
	srv := newServer(t)
	req := map[string]any{
		"employee_id": "emp-1",
		"punches": []map[string]string{
			{"timestamp": "2025-03-10 07:38:00", "device": "MAIN-IN"},
			{"timestamp": "2025-03-10 12:00:00", "device": "MAIN-OUT"},
			{"timestamp": "2025-03-10 12:30:00", "device": "MAIN-IN"},
			{"timestamp": "2025-03-10 16:30:00", "device": "MAIN-OUT"},
		},
		"rules": map[string]any{"grace_minutes": 10},
	}

	resp := postJSON(t, srv.URL+"/api/attendance/process", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		RawMinutes int      `json:"raw_minutes"`
		Warnings   []string `json:"warnings"`
	}
	decode(t, resp, &result)
	assert.Equal(t, 510, result.RawMinutes) // snapped back to 07:30
	assert.Empty(t, result.Warnings)
}

func TestProcessClockData_InvalidRulesRejected(t *testing.T) {
	srv := newServer(t)
	req := map[string]any{
		"punches": []map[string]string{},
		"rules":   map[string]any{"clock1_max_time": "25:99"},
	}

	resp := postJSON(t, srv.URL+"/api/attendance/process", req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalculatePayslip_Endpoint(t *testing.T) {
	// GIVEN: the 39h30m Permanent golden case
	srv := newServer(t)
	req := map[string]any{
		"hours":             39,
		"minutes":           30,
		"hourly_rate":       "33.96",
		"employment_status": "Permanent",
		"loan_deduction":    "150",
	}

	// WHEN: calculating
	resp := postJSON(t, srv.URL+"/api/payslips/calculate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN: the monetary fields line up
	var result struct {
		StandardTime  string `json:"standard_time"`
		UIF           string `json:"uif"`
		NetSalary     string `json:"net_salary"`
		PaidToAccount string `json:"paid_to_account"`
	}
	decode(t, resp, &result)
	assert.Equal(t, "1341.42", result.StandardTime)
	assert.Equal(t, "13.41", result.UIF)
	assert.Equal(t, "1328.01", result.NetSalary)
	assert.Equal(t, "1178.01", result.PaidToAccount)
}

func TestSavePayslip_Endpoint(t *testing.T) {
	srv := newServer(t)
	req := map[string]any{
		"employee_id":       "emp-1",
		"week_ending":       "2025-03-14",
		"hours":             39,
		"minutes":           30,
		"hourly_rate":       "33.96",
		"employment_status": "Permanent",
	}

	resp := postJSON(t, srv.URL+"/api/payslips/", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	decode(t, resp, &created)
	assert.Equal(t, "emp-1-2025-03-14", created["id"])
}

func TestSavePayslip_MissingEmployeeRejected(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/api/payslips/", map[string]any{"week_ending": "2025-03-14"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLedgerEndpoints_RecordListBalance(t *testing.T) {
	// GIVEN: a recorded cash loan
	srv := newServer(t)
	resp := postJSON(t, srv.URL+"/api/ledger/transactions", map[string]any{
		"employee_id": "emp-1",
		"date":        "2025-03-01",
		"amount":      "1200",
		"type":        "disbursement",
		"mode":        "Cash",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID            string `json:"id"`
		BalanceAfter  string `json:"balance_after"`
		BalanceBefore string `json:"balance_before"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "0.00", created.BalanceBefore)
	assert.Equal(t, "1200.00", created.BalanceAfter)

	// WHEN: listing and reading the balance
	listResp, err := http.Get(srv.URL + "/api/ledger/emp-1/transactions")
	require.NoError(t, err)
	var txs []struct {
		ID string `json:"id"`
	}
	decode(t, listResp, &txs)
	require.Len(t, txs, 1)
	assert.Equal(t, created.ID, txs[0].ID)

	balResp, err := http.Get(srv.URL + "/api/ledger/emp-1/balance")
	require.NoError(t, err)
	var bal struct {
		Balance string `json:"balance"`
	}
	decode(t, balResp, &bal)

	// THEN: the balance reflects the loan
	assert.Equal(t, "1200.00", bal.Balance)
}

func TestLedgerEndpoints_ValidationMapsTo400(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/api/ledger/transactions", map[string]any{
		"employee_id": "",
		"date":        "2025-03-01",
		"amount":      "0",
		"type":        "disbursement",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLedgerEndpoints_EditUnknownMapsTo404(t *testing.T) {
	srv := newServer(t)

	buf := bytes.NewReader([]byte(`{"notes":"x"}`))
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/ledger/transactions/no-such-id", buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotify_AcceptedWithoutScheduler(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/api/sync/notify", map[string]any{"row": "payslips"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

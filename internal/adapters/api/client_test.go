package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL)
	require.NoError(t, err)
	return client
}

func envelopeResponse(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	}))
}

func TestNewValidatesBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New("   ")
	assert.Error(t, err)

	client, err := New("vm-server.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "https://vm-server.example.com/api", client.baseURL)

	client, err = New("http://localhost:8000/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", client.baseURL)
}

func TestListVMsPagedEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/virtual-machines/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		envelopeResponse(t, w, map[string]any{
			"count": 11,
			"results": []map[string]any{
				{"id": 11, "name": "VM11", "cpu": 2, "ram": 2048, "cost": 40, "status": "running", "owner": "alice", "data_backed_up": 100, "data_not_backed_up": 24},
			},
		})
	})

	page, err := client.ListVMs(context.Background(), "tok", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.VMID(11), page.Items[0].ID)
	assert.Equal(t, int64(24), page.Items[0].NotBackedUpMB)
}

func TestListVMsBareListData(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		envelopeResponse(t, w, []map[string]any{
			{"id": 1, "name": "VM1", "status": "running"},
			{"id": 2, "name": "VM2", "status": "stopped"},
		})
	})

	page, err := client.ListVMs(context.Background(), "tok", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 2)
}

func TestCreateVM(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-vms/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "worker-1", body["name"])
		assert.Equal(t, float64(4), body["cpu"])
		assert.Equal(t, "running", body["status"])

		envelopeResponse(t, w, map[string]any{"id": 42, "name": "worker-1", "cpu": 4, "ram": 8192, "status": "running", "owner": "alice"})
	})

	created, err := client.CreateVM(context.Background(), "tok", ports.CreateVMRequest{
		Name:   "worker-1",
		CPU:    4,
		RAMMB:  8192,
		Status: domain.VMStatusRunning,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VMID(42), created.ID)
	assert.Equal(t, "alice", created.OwnerID)
}

func TestUpdateVMBackfillsID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/edit-vm/7/", r.URL.Path)
		envelopeResponse(t, w, map[string]any{"name": "renamed", "status": "stopped"})
	})

	updated, err := client.UpdateVM(context.Background(), "tok", 7, ports.UpdateVMRequest{Name: "renamed", CPU: 2, RAMMB: 2048, Status: domain.VMStatusStopped})
	require.NoError(t, err)
	assert.Equal(t, domain.VMID(7), updated.ID)
	assert.Equal(t, "renamed", updated.Name)
}

func TestDeleteVMNoContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/vms/delete/7/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.DeleteVM(context.Background(), "tok", 7))
}

func TestAssignVM(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/assign-vm/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["vm_id"])
		assert.Equal(t, "bob", body["user_id"])

		envelopeResponse(t, w, nil)
	})

	assert.NoError(t, client.AssignVM(context.Background(), "tok", 7, "bob"))
}

func TestSubUserEndpoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sub-users/":
			envelopeResponse(t, w, []map[string]any{
				{"id": "sub-1", "sub_username": "ouma", "assigned_model": 3},
			})
		case "/sub-users/create/":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "newbie", body["sub_username"])
			envelopeResponse(t, w, map[string]any{"id": "sub-2", "sub_username": "newbie", "assigned_model": 0})
		case "/sub-users/delegate/":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "sub-1", body["sub_user_id"])
			assert.Equal(t, float64(4), body["assigned_model"])
			envelopeResponse(t, w, nil)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	subUsers, err := client.ListSubUsers(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, subUsers, 1)
	assert.Equal(t, "ouma", subUsers[0].Username)
	assert.Equal(t, 3, subUsers[0].AssignedVMCount)

	created, err := client.CreateSubUser(ctx, "tok", "newbie")
	require.NoError(t, err)
	assert.Equal(t, domain.SubUserID("sub-2"), created.ID)

	assert.NoError(t, client.DelegateVM(ctx, "tok", "sub-1", 4))
}

func TestBillingEndpoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/create-backup/":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(7), body["vm"])
			assert.Equal(t, float64(24), body["size"])
			assert.Equal(t, float64(1200), body["bill"])
			envelopeResponse(t, w, map[string]any{"id": "bill-1"})
		case "/unpaid-backups/":
			envelopeResponse(t, w, []map[string]any{
				{"id": "bill-1", "vm": 7, "size": 24, "amount": 1200},
			})
		case "/make-payment/":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "bill-1", body["backup_id"])
			assert.Equal(t, float64(1200), body["amount"])
			assert.Equal(t, "4111111111111111", body["card_number"])
			envelopeResponse(t, w, map[string]any{"transaction_id": "txn-77"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	bill, err := client.CreateBackup(ctx, "tok", 7, 24, 1200)
	require.NoError(t, err)
	assert.Equal(t, domain.BillID("bill-1"), bill.ID)
	assert.Equal(t, domain.VMID(7), bill.VMID)
	assert.Equal(t, int64(1200), bill.Amount)
	assert.Equal(t, domain.BillStatusPending, bill.Status)

	bills, err := client.ListOutstandingBills(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, domain.BillStatusPending, bills[0].Status)

	txn, err := client.MakePayment(ctx, "tok", "bill-1", 1200, "4111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "txn-77", txn)
}

func TestSubscribeSendsTierName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribe/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gold", body["plan"])

		envelopeResponse(t, w, nil)
	})

	plan, err := domain.PlanByTier(domain.TierGold)
	require.NoError(t, err)
	assert.NoError(t, client.Subscribe(context.Background(), "tok", plan))
}

func TestDoMapsFailureEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "quota exceeded",
		})
	})

	_, err := client.ListVMs(context.Background(), "tok", 1, 10)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadRequest, remote.Status)
	assert.Equal(t, "quota exceeded", remote.Message)
}

func TestDoMapsUnsuccessfulTwoHundred(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "backend busy",
		})
	})

	_, err := client.ListVMs(context.Background(), "tok", 1, 10)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusOK, remote.Status)
	assert.Equal(t, "backend busy", remote.Message)
}

func TestDoMapsNonJSONErrorBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.ListVMs(context.Background(), "tok", 1, 10)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadGateway, remote.Status)
	assert.Equal(t, "upstream down", remote.Message)
}

func TestDoMapsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.ListVMs(context.Background(), "tok", 1, 10)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Error(t, errors.Unwrap(remote))
}

package api

import (
	"encoding/json"

	"github.com/oumajohn/vmhost-cli/internal/domain"
)

type vmPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CPU           int    `json:"cpu"`
	RAM           int    `json:"ram"`
	Cost          int64  `json:"cost"`
	Status        string `json:"status"`
	Owner         string `json:"owner"`
	BackedUpMB    int64  `json:"data_backed_up"`
	NotBackedUpMB int64  `json:"data_not_backed_up"`
}

func (p vmPayload) toDomain() domain.VirtualMachine {
	return domain.VirtualMachine{
		ID:            domain.VMID(p.ID),
		Name:          p.Name,
		CPU:           p.CPU,
		RAMMB:         p.RAM,
		CostPerMonth:  p.Cost,
		Status:        domain.VMStatus(p.Status),
		OwnerID:       p.Owner,
		BackedUpMB:    p.BackedUpMB,
		NotBackedUpMB: p.NotBackedUpMB,
	}
}

type vmWritePayload struct {
	Name   string `json:"name"`
	CPU    int    `json:"cpu"`
	RAM    int    `json:"ram"`
	Cost   int64  `json:"cost"`
	Status string `json:"status"`
}

// vmPagePayload accepts both enveloped pagination and a bare list.
type vmPagePayload struct {
	Count   int         `json:"count"`
	Results []vmPayload `json:"results"`
}

func (p *vmPagePayload) UnmarshalJSON(data []byte) error {
	var bare []vmPayload
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Results = bare
		p.Count = len(bare)
		return nil
	}

	type alias vmPagePayload
	var paged alias
	if err := json.Unmarshal(data, &paged); err != nil {
		return err
	}
	*p = vmPagePayload(paged)
	return nil
}

type subUserPayload struct {
	ID            string `json:"id"`
	ParentUserID  string `json:"parent_user_id"`
	SubUsername   string `json:"sub_username"`
	AssignedModel int    `json:"assigned_model"`
}

func (p subUserPayload) toDomain() domain.SubUser {
	return domain.SubUser{
		ID:              domain.SubUserID(p.ID),
		ParentUserID:    p.ParentUserID,
		Username:        p.SubUsername,
		AssignedVMCount: p.AssignedModel,
	}
}

type billPayload struct {
	ID            string `json:"id"`
	VM            int64  `json:"vm"`
	SizeMB        int64  `json:"size"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (p billPayload) toDomain() domain.Bill {
	return domain.Bill{
		ID:            domain.BillID(p.ID),
		VMID:          domain.VMID(p.VM),
		SizeMB:        p.SizeMB,
		Amount:        p.Amount,
		Status:        domain.BillStatus(p.Status),
		TransactionID: p.TransactionID,
	}
}

type paymentPayload struct {
	TransactionID string `json:"transaction_id"`
}

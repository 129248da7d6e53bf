// Package console renders the hosting views for the terminal.
package console

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oumajohn/vmhost-cli/internal/application"
	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

func renderVMPage(page ports.VMPage, pageNumber, pageSize int, s styles) string {
	lines := []string{
		s.title.Render("Virtual Machines"),
		s.header.Render(fmt.Sprintf("page %d, showing %d of %d", pageNumber, len(page.Items), page.Total)),
	}

	if len(page.Items) == 0 {
		lines = append(lines, s.faint.Render("No virtual machines found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, vm := range page.Items {
		lines = append(lines, s.section.Render(renderVM(vm, s)))
	}

	totalPages := (page.Total + pageSize - 1) / pageSize
	if totalPages > 1 {
		lines = append(lines, s.faint.Render(fmt.Sprintf("pages: %d", totalPages)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderVM(vm domain.VirtualMachine, s styles) string {
	status := s.success.Render(string(vm.Status))
	if vm.Status != domain.VMStatusRunning {
		status = s.errorMsg.Render(string(vm.Status))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.name.Render(fmt.Sprintf("%s (#%d)", vm.Name, vm.ID)),
		s.detail.Render(fmt.Sprintf("owner: %s  status: %s", ownerLabel(vm.OwnerID), status)),
		s.detail.Render(fmt.Sprintf("cpu: %d vCPUs  ram: %d MB  cost: %d/month", vm.CPU, vm.RAMMB, vm.CostPerMonth)),
		s.detail.Render(fmt.Sprintf("backed up: %d MB  pending backup: %d MB", vm.BackedUpMB, vm.NotBackedUpMB)),
	)
}

func ownerLabel(ownerID string) string {
	if ownerID == "" {
		return "unassigned"
	}
	return ownerID
}

func renderSubUsers(subUsers []domain.SubUser, s styles) string {
	lines := []string{
		s.title.Render("Sub-Users"),
		s.header.Render(fmt.Sprintf("%d of %d slots used", len(subUsers), domain.MaxSubUsers)),
	}

	if len(subUsers) == 0 {
		lines = append(lines, s.faint.Render("No sub-users yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, subUser := range subUsers {
		capacity := fmt.Sprintf("assigned VMs: %d/%d", subUser.AssignedVMCount, domain.MaxVMsPerSubUser)
		if subUser.AtCapacity() {
			capacity += " " + s.warning.Render("[at capacity]")
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.name.Render(subUser.Username),
			s.detail.Render(capacity),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPlans(current domain.SubscriptionPlan, s styles) string {
	lines := []string{
		s.title.Render("Subscription Plans"),
	}

	for _, plan := range domain.PlanCatalog() {
		label := fmt.Sprintf("%-9s vm quota: %-3d backup quota: %d MB", plan.Name, plan.VMQuota, plan.BackupQuotaMB)
		if plan.ID == current.ID {
			lines = append(lines, s.active.Render(label+"  (active)"))
			continue
		}
		lines = append(lines, s.detail.Render(label))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBills(bills []domain.Bill, s styles) string {
	lines := []string{
		s.title.Render("Outstanding Bills"),
	}

	if len(bills) == 0 {
		lines = append(lines, s.faint.Render("No unpaid bills."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, bill := range bills {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.name.Render(fmt.Sprintf("Bill %s", bill.ID)),
			s.detail.Render(fmt.Sprintf("vm: %d  backup size: %d MB  amount: %d", bill.VMID, bill.SizeMB, bill.Amount)),
			s.detail.Render(fmt.Sprintf("status: %s", bill.Status)),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(info application.SessionInfo, now time.Time, s styles) string {
	if !info.Active {
		return s.faint.Render("No active session. Run `vmc session set` to store a token.")
	}

	lines := []string{
		s.title.Render("Session"),
		s.detail.Render(fmt.Sprintf("role: %s", info.Role)),
	}
	if info.Subject != "" {
		lines = append(lines, s.detail.Render(fmt.Sprintf("subject: %s", info.Subject)))
	}
	if !info.ExpiresAt.IsZero() {
		expiry := s.detail.Render(fmt.Sprintf("expires: %s", info.ExpiresAt.Format(time.RFC3339)))
		if info.Expired(now) {
			expiry += " " + s.errorMsg.Render("[expired]")
		}
		lines = append(lines, expiry)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderNotification styles a transient success or error line.
func RenderNotification(notification domain.Notification) string {
	s := newStyles()
	if notification.Kind == domain.NotificationError {
		return s.errorMsg.Render(notification.Message)
	}
	return s.success.Render(notification.Message)
}

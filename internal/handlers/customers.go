package handlers

import (
	"net/http"

	"collectra/internal/models"
)

// ListCustomers returns customers for one client, newest first.
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client_id is required"})
		return
	}
	limit, offset := pageParams(r, 50)

	list, err := h.Customers.List(r.Context(), clientID, limit, offset)
	if err != nil {
		h.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, customerResp(&list[i]))
	}
	h.JSON(w, http.StatusOK, map[string]any{"customers": out, "count": len(out)})
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), r.PathValue("customer_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, customerResp(c))
}

func (h *Handlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("customer_id")

	if _, err := h.Customers.Get(r.Context(), customerID); err != nil {
		h.Error(w, err)
		return
	}
	if err := h.Customers.Delete(r.Context(), customerID); err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"deleted": customerID})
}

func customerResp(c *models.Customer) map[string]any {
	return map[string]any{
		"id":              c.ID,
		"client_id":       c.ClientID,
		"contract_number": c.ContractNumber,
		"client_name":     c.ClientName,
		"nic":             c.NIC,
		"home_address":    c.HomeAddress,

		"customer_contact_number_1": c.CustomerContactNumber1,
		"customer_contact_number_2": c.CustomerContactNumber2,
		"customer_contact_number_3": c.CustomerContactNumber3,

		"account_number": c.AccountNumber,
		"card_number":    c.CardNumber,

		"granted_amount":                  c.GrantedAmount,
		"facility_granted_date":           c.FacilityGrantedDate,
		"facility_end_date":               c.FacilityEndDate,
		"monthly_rental_payment_with_vat": c.MonthlyRentalPaymentWithVAT,
		"last_payment_date":               c.LastPaymentDate,
		"last_payment_amount":             c.LastPaymentAmount,
		"due_date":                        c.DueDate,

		"designation":                 c.Designation,
		"work_place_name":             c.WorkPlaceName,
		"work_place_address":          c.WorkPlaceAddress,
		"work_place_contact_number_1": c.WorkPlaceContactNumber1,
		"work_place_contact_number_2": c.WorkPlaceContactNumber2,

		"guarantor_1_name":             c.Guarantor1Name,
		"guarantor_1_address":          c.Guarantor1Address,
		"guarantor_1_nic":              c.Guarantor1NIC,
		"guarantor_1_contact_number_1": c.Guarantor1ContactNumber1,
		"guarantor_1_contact_number_2": c.Guarantor1ContactNumber2,

		"guarantor_2_name":             c.Guarantor2Name,
		"guarantor_2_address":          c.Guarantor2Address,
		"guarantor_2_nic":              c.Guarantor2NIC,
		"guarantor_2_contact_number_1": c.Guarantor2ContactNumber1,
		"guarantor_2_contact_number_2": c.Guarantor2ContactNumber2,

		"zone":          c.Zone,
		"region":        c.Region,
		"branch_name":   c.BranchName,
		"district_name": c.DistrictName,
		"postal_town":   c.PostalTown,

		"days_in_arrears":    c.DaysInArrears,
		"rentals_in_arrears": c.RentalsInArrears,
		"details":            c.Details,
		"payment_assumption": c.PaymentAssumption,

		"import_batch_id": c.ImportBatchID,
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
	}
}

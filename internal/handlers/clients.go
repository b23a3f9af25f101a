package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"collectra/internal/models"
	"collectra/internal/transport/auth"
)

type clientPayload struct {
	ClientCode         string `json:"client_code"`
	ClientName         string `json:"client_name"`
	ClientType         string `json:"client_type"`
	ContactPerson      string `json:"contact_person"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
	TaxID              string `json:"tax_id"`
	IsActive           *bool  `json:"is_active"`
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var p clientPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad JSON: " + err.Error()})
		return
	}

	p.ClientCode = strings.ToUpper(strings.TrimSpace(p.ClientCode))
	if p.ClientCode == "" || strings.TrimSpace(p.ClientName) == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client_code and client_name are required"})
		return
	}

	ct := models.ClientType(strings.ToUpper(p.ClientType))
	if p.ClientType == "" {
		ct = models.ClientTypeOther
	}
	if !ct.Valid() {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client_type must be one of BANK, NBFI, OTHER"})
		return
	}

	if existing, err := h.Clients.GetByCode(r.Context(), p.ClientCode); err == nil && existing != nil {
		h.JSON(w, http.StatusConflict, map[string]any{"error": "client_code already exists"})
		return
	}

	c := &models.Client{
		ID:                 uuid.NewString(),
		ClientCode:         p.ClientCode,
		ClientName:         strings.TrimSpace(p.ClientName),
		ClientType:         ct,
		ContactPerson:      p.ContactPerson,
		ContactEmail:       p.ContactEmail,
		ContactPhone:       p.ContactPhone,
		Address:            p.Address,
		RegistrationNumber: p.RegistrationNumber,
		TaxID:              p.TaxID,
		IsActive:           true,
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if userID, err := auth.GetUserID(r.Context()); err == nil {
		c.CreatedBy = &userID
	}

	if err := h.Clients.Create(r.Context(), c); err != nil {
		h.Logger.Printf("[CLIENTS][ERR] create: %v", err)
		h.Error(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, clientResp(c))
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 100)
	activeOnly := r.URL.Query().Get("active_only") == "true"
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	list, err := h.Clients.List(r.Context(), activeOnly, search, limit, offset)
	if err != nil {
		h.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, clientResp(&list[i]))
	}
	h.JSON(w, http.StatusOK, map[string]any{"clients": out, "count": len(out)})
}

func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.Clients.Get(r.Context(), r.PathValue("client_id"))
	if err != nil {
		h.Error(w, err)
		return
	}

	customers, err := h.Customers.CountByClient(r.Context(), c.ID)
	if err != nil {
		h.Error(w, err)
		return
	}

	resp := clientResp(c)
	resp["customer_count"] = customers
	h.JSON(w, http.StatusOK, resp)
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.Clients.Get(r.Context(), r.PathValue("client_id"))
	if err != nil {
		h.Error(w, err)
		return
	}

	var p clientPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad JSON: " + err.Error()})
		return
	}

	// client_code is immutable, it is baked into customer natural keys.
	if p.ClientName != "" {
		c.ClientName = strings.TrimSpace(p.ClientName)
	}
	if p.ClientType != "" {
		ct := models.ClientType(strings.ToUpper(p.ClientType))
		if !ct.Valid() {
			h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client_type must be one of BANK, NBFI, OTHER"})
			return
		}
		c.ClientType = ct
	}
	if p.ContactPerson != "" {
		c.ContactPerson = p.ContactPerson
	}
	if p.ContactEmail != "" {
		c.ContactEmail = p.ContactEmail
	}
	if p.ContactPhone != "" {
		c.ContactPhone = p.ContactPhone
	}
	if p.Address != "" {
		c.Address = p.Address
	}
	if p.RegistrationNumber != "" {
		c.RegistrationNumber = p.RegistrationNumber
	}
	if p.TaxID != "" {
		c.TaxID = p.TaxID
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}

	if err := h.Clients.Update(r.Context(), c); err != nil {
		h.Logger.Printf("[CLIENTS][ERR] update %s: %v", c.ID, err)
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, clientResp(c))
}

// DeleteClient removes a client. A client that still has customers is only
// deleted with ?force=true, which cascades to its customer records.
func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")

	c, err := h.Clients.Get(r.Context(), clientID)
	if err != nil {
		h.Error(w, err)
		return
	}

	count, err := h.Customers.CountByClient(r.Context(), c.ID)
	if err != nil {
		h.Error(w, err)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if count > 0 && !force {
		h.JSON(w, http.StatusConflict, map[string]any{
			"error":          "client has customer records, pass force=true to delete them too",
			"customer_count": count,
		})
		return
	}

	var removed int64
	if count > 0 {
		removed, err = h.Customers.DeleteByClient(r.Context(), c.ID)
		if err != nil {
			h.Error(w, err)
			return
		}
	}

	if err := h.Clients.Delete(r.Context(), c.ID); err != nil {
		h.Error(w, err)
		return
	}

	h.Logger.Printf("[CLIENTS][OK] deleted client=%s customers_removed=%d", c.ID, removed)
	h.JSON(w, http.StatusOK, map[string]any{"deleted": c.ID, "customers_removed": removed})
}

func clientResp(c *models.Client) map[string]any {
	return map[string]any{
		"id":                  c.ID,
		"client_code":         c.ClientCode,
		"client_name":         c.ClientName,
		"client_type":         c.ClientType,
		"contact_person":      c.ContactPerson,
		"contact_email":       c.ContactEmail,
		"contact_phone":       c.ContactPhone,
		"address":             c.Address,
		"registration_number": c.RegistrationNumber,
		"tax_id":              c.TaxID,
		"is_active":           c.IsActive,
		"created_at":          c.CreatedAt,
		"updated_at":          c.UpdatedAt,
	}
}

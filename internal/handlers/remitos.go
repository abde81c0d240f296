package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Nrlsb/Logistica-Remitos/internal/middleware"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/reconcile"
	"github.com/Nrlsb/Logistica-Remitos/internal/services/printer"
)

// CreateRemitoRequest is the dispatch submission payload
type CreateRemitoRequest struct {
	RemitoNumber   string                  `json:"remitoNumber"`
	Items          []reconcile.ScannedItem `json:"items"`
	Clarification  string                  `json:"clarification"`
	MissingReasons map[string]string       `json:"missingReasons"`
	PreparedBy     string                  `json:"preparedBy"`
}

// remitoResponse enriches a remito with its sales-order info
type remitoResponse struct {
	models.Remito
	NumeroPV      string `json:"numero_pv"`
	Sucursal      string `json:"sucursal"`
	ClienteCodigo string `json:"cliente_codigo"`
	ClienteNombre string `json:"cliente_nombre"`
}

func enrichRemito(remito models.Remito, lookup map[string]preRemitoInfo) remitoResponse {
	info, ok := lookup[remito.RemitoNumber]
	if !ok {
		info = preRemitoInfo{NumeroPV: "-", Sucursal: "-", ClienteCodigo: "-", ClienteNombre: "-"}
	}
	return remitoResponse{
		Remito:        remito,
		NumeroPV:      info.NumeroPV,
		Sucursal:      info.Sucursal,
		ClienteCodigo: info.ClienteCodigo,
		ClienteNombre: info.ClienteNombre,
	}
}

// createRemito finalizes a dispatch. The discrepancy report is recomputed
// here against the stored expected order; whatever the client computed is
// ignored. A non-empty report requires a clarification note and a reason per
// missing item before anything is persisted.
func (r *Router) createRemito(w http.ResponseWriter, req *http.Request) {
	var body CreateRemitoRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.RemitoNumber == "" || len(body.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Missing remito number or items")
		return
	}
	for _, item := range body.Items {
		if item.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "Quantities must be at least 1")
			return
		}
	}

	// Reconcile against the expected order. A missing pre-remito means no
	// baseline was loaded: the dispatch goes through without discrepancies.
	expected, err := r.store.ExpectedItems(body.RemitoNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	scanned := reconcile.MergeScans(body.Items)
	report := reconcile.Reconcile(expected, scanned)

	if err := reconcile.ValidateFinalization(report, body.Clarification, body.MissingReasons); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	report = reconcile.ApplyReasons(report, body.MissingReasons)

	itemsJSON, err := json.Marshal(scanned)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	claims := middleware.ClaimsFromContext(req.Context())
	remito := models.Remito{
		RemitoNumber:  body.RemitoNumber,
		Items:         datatypes.JSON(itemsJSON),
		Discrepancies: datatypes.JSON(reportJSON),
		Clarification: body.Clarification,
		Status:        models.RemitoStatusScanned,
		CreatedBy:     claims.Username,
		PreparedBy:    body.PreparedBy,
	}
	if err := r.db.Create(&remito).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Mark the expected order processed and drop its draft
	err = r.db.Model(&models.PreRemito{}).
		Where("order_number = ?", body.RemitoNumber).
		Updates(map[string]interface{}{
			"status":        models.PreRemitoStatusProcessed,
			"scanned_items": datatypes.JSON("[]"),
		}).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	r.logActivity(claims.Username, "create_remito", "remitos", strconv.Itoa(int(remito.ID)), map[string]interface{}{
		"remito_number": body.RemitoNumber,
		"items_count":   len(scanned),
		"prepared_by":   body.PreparedBy,
		"has_missing":   len(report.Missing) > 0,
		"has_extra":     len(report.Extra) > 0,
	})
	r.hub.Broadcast("remito_created", map[string]interface{}{
		"id":            remito.ID,
		"remito_number": remito.RemitoNumber,
		"created_by":    remito.CreatedBy,
	})

	respondJSON(w, http.StatusCreated, remito)
}

// listRemitos returns all finalized dispatches, newest first, enriched with
// sales-order info.
func (r *Router) listRemitos(w http.ResponseWriter, req *http.Request) {
	var remitos []models.Remito
	if err := r.db.Order("date DESC").Find(&remitos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	numbers := make([]string, 0, len(remitos))
	for _, remito := range remitos {
		numbers = append(numbers, remito.RemitoNumber)
	}
	lookup, err := r.salesOrderLookup(numbers)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result := make([]remitoResponse, 0, len(remitos))
	for _, remito := range remitos {
		result = append(result, enrichRemito(remito, lookup))
	}

	respondJSON(w, http.StatusOK, result)
}

// getRemito returns a single dispatch by ID
func (r *Router) getRemito(w http.ResponseWriter, req *http.Request) {
	remito, ok := r.findRemito(w, req)
	if !ok {
		return
	}

	lookup, err := r.salesOrderLookup([]string{remito.RemitoNumber})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, enrichRemito(remito, lookup))
}

// updateRemito records the packaging count and/or status transition
func (r *Router) updateRemito(w http.ResponseWriter, req *http.Request) {
	remito, ok := r.findRemito(w, req)
	if !ok {
		return
	}

	var body struct {
		TotalPackages *int                `json:"total_packages"`
		Status        models.RemitoStatus `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	claims := middleware.ClaimsFromContext(req.Context())
	updates := map[string]interface{}{}
	if body.TotalPackages != nil {
		if *body.TotalPackages < 1 {
			respondError(w, http.StatusBadRequest, "total_packages must be at least 1")
			return
		}
		updates["total_packages"] = *body.TotalPackages
		updates["packages_added_by"] = claims.Username
	}
	if body.Status != "" {
		if body.Status != models.RemitoStatusScanned && body.Status != models.RemitoStatusCompleted {
			respondError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		updates["status"] = body.Status
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := r.db.Model(&remito).Updates(updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	r.hub.Broadcast("remito_updated", map[string]interface{}{
		"id":            remito.ID,
		"remito_number": remito.RemitoNumber,
	})

	respondJSON(w, http.StatusOK, remito)
}

// printRemitoLabels streams the package label PDF for a dispatch
func (r *Router) printRemitoLabels(w http.ResponseWriter, req *http.Request) {
	remito, ok := r.findRemito(w, req)
	if !ok {
		return
	}
	if remito.TotalPackages < 1 {
		respondError(w, http.StatusBadRequest, "No packages recorded for this remito")
		return
	}

	lookup, err := r.salesOrderLookup([]string{remito.RemitoNumber})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	pdfBytes, err := printer.GeneratePackageLabels(printer.LabelConfig{
		RemitoNumber:  remito.RemitoNumber,
		TotalPackages: remito.TotalPackages,
		ClienteNombre: lookup[remito.RemitoNumber].ClienteNombre,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"bultos_%s.pdf\"", remito.RemitoNumber))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

// findRemito loads the remito addressed by the {id} path variable, writing
// the error response itself when the lookup fails.
func (r *Router) findRemito(w http.ResponseWriter, req *http.Request) (models.Remito, bool) {
	vars := mux.Vars(req)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid remito ID")
		return models.Remito{}, false
	}

	var remito models.Remito
	if err := r.db.First(&remito, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Remito not found")
		} else {
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return models.Remito{}, false
	}
	return remito, true
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Nrlsb/Logistica-Remitos/internal/middleware"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/reconcile"
)

// PreRemitoPush is the ERP webhook payload announcing an expected order
type PreRemitoPush struct {
	Header struct {
		NumeroPV        string `json:"numero_pv"`
		NumeroPreRemito string `json:"numero_pre_remito"`
		CodigoCliente   string `json:"codigo_cliente"`
		TiendaCliente   string `json:"tienda_cliente"`
		NombreCliente   string `json:"nombre_cliente"`
	} `json:"header"`
	Details []struct {
		Item           string `json:"item"`
		CodigoProducto string `json:"codigo_producto"`
		Descripcion    string `json:"descripcion"`
		Cantidad       int    `json:"cantidad"`
	} `json:"details"`
}

// preRemitoInfo is the flattened sales-order data attached to list items
type preRemitoInfo struct {
	NumeroPV      string `json:"numero_pv"`
	Sucursal      string `json:"sucursal"`
	ClienteCodigo string `json:"cliente_codigo"`
	ClienteNombre string `json:"cliente_nombre"`
}

// receivePreRemito upserts an expected order pushed by the ERP, plus its
// sales-order linkage.
func (r *Router) receivePreRemito(w http.ResponseWriter, req *http.Request) {
	var body PreRemitoPush
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Header.NumeroPreRemito == "" || body.Details == nil {
		respondError(w, http.StatusBadRequest, "Invalid payload: Missing header or details")
		return
	}

	expected := make([]reconcile.ExpectedItem, 0, len(body.Details))
	for _, d := range body.Details {
		expected = append(expected, reconcile.ExpectedItem{
			Code:        d.CodigoProducto,
			Description: d.Descripcion,
			Quantity:    d.Cantidad,
		})
	}
	itemsJSON, err := json.Marshal(expected)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Upsert pre-remito by order number
	var pre models.PreRemito
	err = r.db.Where("order_number = ?", body.Header.NumeroPreRemito).First(&pre).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pre = models.PreRemito{
			OrderNumber: body.Header.NumeroPreRemito,
			Items:       datatypes.JSON(itemsJSON),
			Status:      models.PreRemitoStatusPending,
		}
		if err := r.db.Create(&pre).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	} else {
		pre.Items = datatypes.JSON(itemsJSON)
		pre.Status = models.PreRemitoStatusPending
		if err := r.db.Save(&pre).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	// Upsert the sales-order linkage
	if body.Header.NumeroPV != "" {
		var so models.SalesOrder
		err := r.db.Where("numero_pv = ?", body.Header.NumeroPV).First(&so).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			so = models.SalesOrder{NumeroPV: body.Header.NumeroPV}
		} else if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		so.PreRemitoAsociado = body.Header.NumeroPreRemito
		so.ClienteTienda = body.Header.TiendaCliente
		so.ClienteCodigo = body.Header.CodigoCliente
		so.ClienteNombre = body.Header.NombreCliente
		if err := r.db.Save(&so).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	r.hub.Broadcast("pre_remito_received", map[string]interface{}{
		"order_number": pre.OrderNumber,
		"items_count":  len(expected),
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Pre-Remito received successfully",
		"id":      pre.ID,
	})
}

// salesOrderLookup maps pre-remito order numbers to their flattened
// sales-order info.
func (r *Router) salesOrderLookup(orderNumbers []string) (map[string]preRemitoInfo, error) {
	lookup := make(map[string]preRemitoInfo)
	if len(orderNumbers) == 0 {
		return lookup, nil
	}

	var orders []models.SalesOrder
	if err := r.db.Where("pre_remito_asociado IN ?", orderNumbers).Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, so := range orders {
		lookup[so.PreRemitoAsociado] = preRemitoInfo{
			NumeroPV:      so.NumeroPV,
			Sucursal:      so.ClienteTienda,
			ClienteCodigo: so.ClienteCodigo,
			ClienteNombre: so.ClienteNombre,
		}
	}
	return lookup, nil
}

// listPreRemitos returns the unprocessed orders for the selection list,
// newest first, with sales-order info flattened in.
func (r *Router) listPreRemitos(w http.ResponseWriter, req *http.Request) {
	var pres []models.PreRemito
	err := r.db.Where("status <> ?", models.PreRemitoStatusProcessed).
		Order("created_at DESC").
		Find(&pres).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	orderNumbers := make([]string, 0, len(pres))
	for _, pre := range pres {
		orderNumbers = append(orderNumbers, pre.OrderNumber)
	}
	lookup, err := r.salesOrderLookup(orderNumbers)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type preRemitoSummary struct {
		ID          uint      `json:"id"`
		OrderNumber string    `json:"order_number"`
		CreatedAt   time.Time `json:"created_at"`
		preRemitoInfo
	}

	result := make([]preRemitoSummary, 0, len(pres))
	for _, pre := range pres {
		result = append(result, preRemitoSummary{
			ID:            pre.ID,
			OrderNumber:   pre.OrderNumber,
			CreatedAt:     pre.CreatedAt,
			preRemitoInfo: lookup[pre.OrderNumber],
		})
	}

	respondJSON(w, http.StatusOK, result)
}

// getPreRemito returns one expected order with its saved draft
func (r *Router) getPreRemito(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	orderNumber := vars["orderNumber"]

	var pre models.PreRemito
	err := r.db.Where("order_number = ?", orderNumber).First(&pre).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "Pre-remito not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	lookup, err := r.salesOrderLookup([]string{pre.OrderNumber})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	info := lookup[pre.OrderNumber]

	scanned := pre.ScannedItems
	if len(scanned) == 0 {
		scanned = datatypes.JSON("[]")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":             pre.ID,
		"order_number":   pre.OrderNumber,
		"items":          pre.Items,
		"scanned_items":  scanned,
		"status":         pre.Status,
		"created_at":     pre.CreatedAt,
		"numero_pv":      info.NumeroPV,
		"sucursal":       info.Sucursal,
		"cliente_codigo": info.ClienteCodigo,
		"cliente_nombre": info.ClienteNombre,
	})
}

// savePreRemitoDraft stores the operator's in-progress scan list so another
// device can resume it.
func (r *Router) savePreRemitoDraft(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	orderNumber := vars["orderNumber"]

	var body struct {
		ScannedItems []reconcile.ScannedItem `json:"scannedItems"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.ScannedItems == nil {
		respondError(w, http.StatusBadRequest, "scannedItems must be an array")
		return
	}
	for _, item := range body.ScannedItems {
		if item.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "Quantities must be at least 1")
			return
		}
	}

	draftJSON, err := json.Marshal(body.ScannedItems)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	res := r.db.Model(&models.PreRemito{}).
		Where("order_number = ?", orderNumber).
		Update("scanned_items", datatypes.JSON(draftJSON))
	if res.Error != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Pre-remito not found")
		return
	}

	claims := middleware.ClaimsFromContext(req.Context())
	r.logActivity(claims.Username, "update_draft", "pre_remitos", orderNumber, map[string]interface{}{
		"items_count": len(body.ScannedItems),
	})
	r.hub.Broadcast("draft_saved", map[string]interface{}{
		"order_number": orderNumber,
		"items_count":  len(body.ScannedItems),
	})

	respondJSON(w, http.StatusOK, map[string]string{"message": "Draft saved successfully"})
}

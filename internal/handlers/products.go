package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Nrlsb/Logistica-Remitos/internal/models"
)

// getProduct resolves a scanner hit: the path value may be the internal code
// or the retail barcode.
func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	barcode := vars["barcode"]

	var product models.Product
	err := r.db.Where("code = ? OR barcode = ?", barcode, barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

package main

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"github.com/Nrlsb/Logistica-Remitos/internal/config"
	"github.com/Nrlsb/Logistica-Remitos/internal/database"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/reconcile"
	"github.com/Nrlsb/Logistica-Remitos/internal/utils"
)

func main() {
	fmt.Println("🌱 Logistica-Remitos Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	err = db.AutoMigrate(
		&models.UserAccount{},
		&models.Product{},
		&models.PreRemito{},
		&models.SalesOrder{},
		&models.Remito{},
		&models.ActivityLog{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	var userCount int64
	db.Model(&models.UserAccount{}).Count(&userCount)
	if userCount > 0 {
		fmt.Printf("⚠️  Database already has %d users. Aborting, nothing modified.\n", userCount)
		return
	}

	// Admin account
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	tasks, _ := json.Marshal([]string{"Preparador"})
	admin := models.UserAccount{
		Username: "admin",
		Password: hash,
		UserCode: "001",
		Role:     "admin",
		Tasks:    datatypes.JSON(tasks),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	fmt.Println("✅ Admin user created (admin / admin123)")

	// Barcode catalog
	products := []models.Product{
		{Code: "P001", Barcode: "7791234567890", Description: "Caja térmica 20L"},
		{Code: "P002", Barcode: "7791234567891", Description: "Film stretch 50cm"},
		{Code: "P003", Barcode: "7791234567892", Description: "Pallet plástico 1x1.2m"},
	}
	if err := db.Create(&products).Error; err != nil {
		log.Fatalf("❌ Failed to create products: %v", err)
	}
	fmt.Printf("✅ %d products created\n", len(products))

	// One pending expected order with its sales-order linkage
	items, _ := json.Marshal([]reconcile.ExpectedItem{
		{Code: "P001", Description: "Caja térmica 20L", Quantity: 10},
		{Code: "P002", Description: "Film stretch 50cm", Quantity: 4},
	})
	pre := models.PreRemito{
		OrderNumber: "R-0001-00000001",
		Items:       datatypes.JSON(items),
		Status:      models.PreRemitoStatusPending,
	}
	if err := db.Create(&pre).Error; err != nil {
		log.Fatalf("❌ Failed to create pre-remito: %v", err)
	}
	so := models.SalesOrder{
		NumeroPV:          "PV-00004521",
		PreRemitoAsociado: pre.OrderNumber,
		ClienteTienda:     "Sucursal Centro",
		ClienteCodigo:     "C0042",
		ClienteNombre:     "Distribuidora Sur SA",
	}
	if err := db.Create(&so).Error; err != nil {
		log.Fatalf("❌ Failed to create sales order: %v", err)
	}
	fmt.Printf("✅ Pre-remito %s created\n", pre.OrderNumber)

	fmt.Println("🎉 Seed complete")
}

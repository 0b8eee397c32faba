package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/database"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/logging"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/store"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

var demoInventory = []types.InventoryItem{
	{Name: "Eggs", Quantity: "6", Category: "dairy"},
	{Name: "Milk", Quantity: "1 l", Category: "dairy"},
	{Name: "Spinach", Quantity: "1 bag", Category: "vegetables", ExpiryDate: "2026-10-20"},
	{Name: "Cheddar", Quantity: "200 g", Category: "dairy"},
	{Name: "Tomatoes", Quantity: "4", Category: "vegetables"},
	{Name: "Rice", Quantity: "1 kg", Category: "pantry"},
}

var demoPreferences = types.UserPreferences{
	SkillLevel:           types.DifficultyIntermediate,
	AvailableTimeMinutes: 30,
	DietPreferences:      []string{"vegetarian"},
	Allergies:            []string{"peanuts"},
}

func main() {
	userID := flag.String("user", "demo-user", "User id to seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.RedisEnabled() {
		log.Fatal("REDIS_HOST or REDIS_URL must be set: the in-memory store does not outlive this process")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	client, err := database.NewRedisClient(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer client.Close()

	kitchen := service.NewKitchenService(store.NewRedisStore(client, store.DefaultKeyPrefix, logger), nil, logger)

	items, err := kitchen.ReplaceInventory(ctx, *userID, demoInventory)
	if err != nil {
		log.Fatalf("Failed to seed inventory: %v", err)
	}
	if _, err := kitchen.SavePreferences(ctx, *userID, demoPreferences); err != nil {
		log.Fatalf("Failed to seed preferences: %v", err)
	}

	token, err := service.NewAuthService(cfg.JWTSecret).GenerateToken(*userID)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("Seeded %d inventory items and preferences for %s\n", len(items), *userID)
	fmt.Printf("Token: %s\n", token)
}

package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const demoPassword = "testpassword123"

var demoUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

var demoTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, false)
	if cfg.Environment == config.Production {
		log.Fatal().Msg("Refusing to seed demo users in production")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	users := service.NewUserService(db)
	subscriptions := service.NewSubscriptionService(db)

	var created []*types.UserView
	for _, req := range demoUsers {
		req.Password = demoPassword
		user, err := users.Register(ctx, req)
		var ve *service.ValidationError
		if errors.As(err, &ve) && ve.Code == service.CodeDuplicateUser {
			log.Info().Str("email", req.Email).Msg("User already exists, skipping")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", req.Email).Msg("Failed to create user")
		}
		created = append(created, user)
		log.Info().Str("email", user.Email).Str("username", user.Username).Msg("Created demo user")
	}

	// Everyone follows the first new user so subscription pages are not empty.
	for i := 1; i < len(created); i++ {
		if _, err := subscriptions.Subscribe(ctx, created[i].ID, created[0].ID, 0); err != nil && !errors.Is(err, service.ErrAlreadySubscribed) {
			log.Warn().Err(err).Str("username", created[i].Username).Msg("Failed to create demo subscription")
		}
	}

	n, err := service.NewCatalogService(db).ImportTags(ctx, demoTags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed tags")
	}

	log.Info().
		Int("users", len(created)).
		Int64("tags", n).
		Str("password", demoPassword).
		Msg("Demo data seeded")
}

package main

import (
	"flag"

	"github.com/ThariniLelwala/EduBloom-sub000/app/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/config"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/logger"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

// Seeds an account from the command line, typically the first admin.
func main() {
	username := flag.String("username", "", "username for the new account")
	email := flag.String("email", "", "email for the new account")
	password := flag.String("password", "", "password for the new account")
	role := flag.String("role", string(models.RoleAdmin), "role: admin, teacher, student or parent")
	studentType := flag.String("student-type", "", "student type: school or university (students only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Logging)

	if *username == "" || *email == "" || *password == "" {
		log.Fatal().Msg("username, email and password are required")
	}

	user := &models.User{
		Username: *username,
		Email:    *email,
		Role:     models.Role(*role),
	}
	if !user.Role.Valid() {
		log.Fatal().Str("role", *role).Msg("invalid role")
	}
	if user.Role == models.RoleStudent {
		st := models.StudentType(*studentType)
		if !st.Valid() {
			log.Fatal().Str("student_type", *studentType).Msg("invalid student type")
		}
		user.StudentType = &st
	}

	digest, salt, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	user.PasswordHash = digest
	user.PasswordSalt = salt

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.NewStore(db).Users().Create(user); err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user created")
}

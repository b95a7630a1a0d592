package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/campusworks/examportal-backend/internal/config"
	"github.com/campusworks/examportal-backend/internal/database"
	"github.com/campusworks/examportal-backend/internal/logger"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/repository"
)

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label + ": ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(line)
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(raw) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}
	return string(raw), nil
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	users := repository.NewUserRepository(pool)

	fmt.Println("Bootstrap an admin account")
	reader := bufio.NewReader(os.Stdin)

	name, err := prompt(reader, "Name")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	email, err := prompt(reader, "Email")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	password, err := promptPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	taken, err := users.EmailExists(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check email")
	}
	if taken {
		fmt.Fprintln(os.Stderr, "that email is already registered")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("admin %s <%s> created (id %s)\n", admin.Name, admin.Email, admin.ID)
}

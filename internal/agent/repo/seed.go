package repo

import (
	"context"
	"fmt"
	"os"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"gopkg.in/yaml.v3"
)

// Seed is the on-disk catalog fixture.
type Seed struct {
	Books    []model.Book    `yaml:"books"`
	Accounts []model.Account `yaml:"accounts"`
}

func LoadSeedFile(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, b := range s.Books {
		if b.Title == "" {
			return nil, fmt.Errorf("seed book %d: empty title", i)
		}
		if b.Quantity < 0 {
			return nil, fmt.Errorf("seed book %q: negative quantity", b.Title)
		}
	}
	for _, a := range s.Accounts {
		if a.Balance < 0 {
			return nil, fmt.Errorf("seed account %d: negative balance", a.UserID)
		}
	}
	return &s, nil
}

// Apply writes every seed record into dst.
func (s *Seed) Apply(ctx context.Context, dst model.Seeder) error {
	for _, b := range s.Books {
		if err := dst.SaveBook(ctx, b); err != nil {
			return fmt.Errorf("seed book %q: %w", b.Title, err)
		}
	}
	for _, a := range s.Accounts {
		if err := dst.SaveAccount(ctx, a); err != nil {
			return fmt.Errorf("seed account %d: %w", a.UserID, err)
		}
	}
	return nil
}

// DefaultSeed is a small demo catalog used when no seed file is configured.
func DefaultSeed() *Seed {
	return &Seed{
		Books: []model.Book{
			{Title: "Dune", Author: "Frank Herbert", Quantity: 5},
			{Title: "Neuromancer", Author: "William Gibson", Quantity: 3},
			{Title: "The Hobbit", Author: "J.R.R. Tolkien", Quantity: 8},
			{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Quantity: 2},
			{Title: "Foundation", Author: "Isaac Asimov", Quantity: 6},
		},
		Accounts: []model.Account{
			{UserID: 1, Balance: 100},
		},
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/princebabou/wishCraft/internal/models"
)

// SeedFile is the YAML layout accepted by Seed:
//
//	cards:
//	  - name: Alice
//	    age: 30
//	    message: Happy birthday!
//	    slug: alice-30 # optional
type SeedFile struct {
	Cards []models.Card `yaml:"cards"`
}

// SeedResult counts what Seed did.
type SeedResult struct {
	Inserted int
	Skipped  int
}

// Seed inserts the cards described by the YAML document in r. Cards without
// a slug get the derived one; cards whose slug already exists are skipped.
func Seed(ctx context.Context, store CardStore, r io.Reader) (SeedResult, error) {
	var res SeedResult

	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, fmt.Errorf("decode seed file: %w", err)
	}

	for i := range file.Cards {
		c := file.Cards[i]
		if c.Name == "" || c.Message == "" {
			return res, fmt.Errorf("seed card %d: %w: name and message are required", i, ErrInvalidCard)
		}
		if c.Age < 0 || c.Age > math.MaxInt32 {
			return res, fmt.Errorf("seed card %d: %w: age %d out of range", i, ErrInvalidCard, c.Age)
		}
		if c.Slug == "" {
			c.Slug = models.DeriveSlug(c.Name, c.Age)
		}
		if err := models.ValidateSlug(c.Slug); err != nil {
			return res, fmt.Errorf("seed card %d: %w", i, err)
		}

		err := store.Create(ctx, &c)
		switch {
		case err == nil:
			res.Inserted++
		case errors.Is(err, ErrDuplicateSlug):
			log.Debug().Str("slug", c.Slug).Msg("seed card already present")
			res.Skipped++
		default:
			return res, err
		}
	}

	log.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("seed complete")
	return res, nil
}

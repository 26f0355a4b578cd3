package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/sightcare/netra/internal/auth/domain"
	"github.com/sightcare/netra/internal/auth/password"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
)

const (
	defaultAdminEmail    = "admin@netra.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "Netra Admin"
)

// EnsureDefaultAdmin seeds the default staff account for self-hosted
// deployments.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).
			Where("email = ?", defaultAdminEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Email:        strings.ToLower(defaultAdminEmail),
			Name:         defaultAdminName,
			PasswordHash: hashed,
			Role:         "admin",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

// EnsureDemoPledges seeds a small demo dataset so the dashboard renders
// something on a fresh install. It is a no-op when any pledge exists.
func EnsureDemoPledges(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&pledgedomain.Pledge{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for i, sample := range demoPledges {
			age := sample.age
			district := sample.district
			gender := sample.gender
			language := sample.language
			createdAt := now.AddDate(0, 0, -sample.daysAgo)
			pledge := pledgedomain.Pledge{
				ID:                 node.Generate(),
				ReferenceNumber:    pledgedomain.FormatReference(createdAt.Year(), int64(i+1)),
				FullName:           sample.name,
				Gender:             &gender,
				Age:                &age,
				Mobile:             sample.mobile,
				City:               sample.city,
				District:           &district,
				State:              sample.state,
				Country:            "India",
				OrgansConsented:    "Eyes",
				LanguagePreference: &language,
				ConsentGiven:       true,
				Source:             sample.source,
				IsActive:           true,
				CreatedAt:          createdAt,
				UpdatedAt:          createdAt,
			}
			if err := tx.WithContext(ctx).Create(&pledge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type demoPledge struct {
	name     string
	gender   string
	age      int
	mobile   string
	city     string
	district string
	state    string
	language string
	source   string
	daysAgo  int
}

var demoPledges = func() []demoPledge {
	names := []string{
		"Ananya Menon", "Ravi Kumar", "Priya Nair", "Suresh Pillai",
		"Lakshmi Iyer", "Arun Varma", "Meera Das", "Vijay Shankar",
	}
	cities := []struct {
		city, district, state string
	}{
		{"Kochi", "Ernakulam", "Kerala"},
		{"Chennai", "Chennai", "Tamil Nadu"},
		{"Thiruvananthapuram", "Thiruvananthapuram", "Kerala"},
		{"Coimbatore", "Coimbatore", "Tamil Nadu"},
	}
	languages := []string{"Malayalam", "Tamil", "English"}
	sources := []string{"web", "camp", "hospital"}
	genders := []string{"Female", "Male"}

	samples := make([]demoPledge, 0, len(names))
	for i, name := range names {
		loc := cities[i%len(cities)]
		samples = append(samples, demoPledge{
			name:     name,
			gender:   genders[i%len(genders)],
			age:      22 + i*7,
			mobile:   fmt.Sprintf("98470000%02d", i),
			city:     loc.city,
			district: loc.district,
			state:    loc.state,
			language: languages[i%len(languages)],
			source:   sources[i%len(sources)],
			daysAgo:  i * 11,
		})
	}
	return samples
}()

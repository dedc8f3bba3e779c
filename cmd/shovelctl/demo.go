package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	gormstore "github.com/shovel-heroes/shovel-heroes-go/pkg/server/store/gorm"
)

const demoPassword = "shovel-demo"

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Generate demonstration data",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'demo' requires a subcommand (seed)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var demoSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake grids, volunteers and donations",
	Long: `Fill the database with fake data for local development.

Creates one grid manager per grid, a handful of volunteers and donors per
grid, and one announcement. Every generated account uses the password
"` + demoPassword + `". Use --seed for a reproducible data set.

Example:
  shovelctl demo seed --grids 5 --seed 42`,
	Run: func(cmd *cobra.Command, args []string) {
		grids, _ := cmd.Flags().GetInt("grids")
		perGrid, _ := cmd.Flags().GetInt("per-grid")
		seed, _ := cmd.Flags().GetInt64("seed")

		if err := seedDemo(cmd.Context(), grids, perGrid, seed); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed demo data: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.AddCommand(demoSeedCmd)
	demoSeedCmd.Flags().Int("grids", 3, "number of grids")
	demoSeedCmd.Flags().Int("per-grid", 4, "volunteers and donations per grid")
	demoSeedCmd.Flags().Int64("seed", 0, "random seed (0 picks one)")
}

func seedDemo(ctx context.Context, grids, perGrid int, seed int64) error {
	if grids <= 0 || perGrid < 0 {
		return fmt.Errorf("grids must be positive and per-grid non-negative")
	}

	database, err := connect(zap.NewNop(), false)
	if err != nil {
		return err
	}

	hash, err := authn.HashPassword([]byte(demoPassword))
	if err != nil {
		return err
	}

	faker := newFaker(seed)
	gen := demoGenerator{faker: faker, hash: hash}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := gormstore.NewUsersStore(tx)
		gridStore := gormstore.NewGridsStore(tx)
		volunteers := gormstore.NewVolunteersStore(tx)
		donations := gormstore.NewDonationsStore(tx)

		var firstManager string
		for i := 0; i < grids; i++ {
			manager := gen.user(role.RoleGridManager)
			if err := users.CreateUser(ctx, manager); err != nil {
				return err
			}
			if firstManager == "" {
				firstManager = manager.ID
			}

			grid := gen.grid(i, manager.ID)
			if err := gridStore.CreateGrid(ctx, grid); err != nil {
				return err
			}
			fmt.Printf("grid %s managed by %s\n", grid.Code, manager.Email)

			for j := 0; j < perGrid; j++ {
				helper := gen.user(role.RoleUser)
				if err := users.CreateUser(ctx, helper); err != nil {
					return err
				}
				if err := volunteers.CreateRegistration(ctx, gen.registration(grid.ID, helper)); err != nil {
					return err
				}
				if err := donations.CreateDonation(ctx, gen.donation(grid.ID, helper)); err != nil {
					return err
				}
			}
		}

		return gormstore.NewAnnouncementsStore(tx).CreateAnnouncement(ctx, &model.Announcement{
			Title:       "Volunteer briefing",
			Body:        faker.Sentence(12),
			Pinned:      true,
			CreatedByID: firstManager,
		})
	})
}

func newFaker(seed int64) *gofakeit.Faker {
	return gofakeit.New(seed)
}

type demoGenerator struct {
	faker *gofakeit.Faker
	hash  string
}

func (g demoGenerator) user(r role.Role) *model.User {
	return &model.User{
		Email:        authn.NormalizeEmail(g.faker.Email()),
		DisplayName:  g.faker.Name(),
		PasswordHash: g.hash,
		Role:         r,
	}
}

func (g demoGenerator) grid(i int, managerID string) *model.Grid {
	contact := g.faker.Phone()
	return &model.Grid{
		Code:            fmt.Sprintf("%c-%d", 'A'+rune(i%26), i/26+1),
		GridType:        g.faker.RandomString(model.ValidGridTypes),
		Status:          model.GridStatusOpen,
		CenterLat:       g.faker.Float64Range(23.64, 23.70),
		CenterLng:       g.faker.Float64Range(121.40, 121.46),
		VolunteerNeeded: g.faker.Number(5, 40),
		MeetingPoint:    g.faker.Street(),
		Description:     g.faker.Sentence(8),
		ContactInfo:     &contact,
		CreatedByID:     managerID,
	}
}

func (g demoGenerator) registration(gridID string, u *model.User) *model.VolunteerRegistration {
	phone := g.faker.Phone()
	return &model.VolunteerRegistration{
		GridID:         gridID,
		CreatedByID:    u.ID,
		VolunteerName:  u.DisplayName,
		VolunteerPhone: &phone,
		VolunteerEmail: &u.Email,
		AvailableTime:  g.faker.RandomString([]string{"morning", "afternoon", "all day"}),
		Skills:         g.faker.RandomString([]string{"shovelling", "first aid", "driving", "cooking"}),
		Status:         model.RegistrationPending,
	}
}

func (g demoGenerator) donation(gridID string, u *model.User) *model.SupplyDonation {
	phone := g.faker.Phone()
	return &model.SupplyDonation{
		GridID:         gridID,
		CreatedByID:    u.ID,
		Name:           g.faker.RandomString([]string{"shovels", "bottled water", "gloves", "rain boots", "buckets"}),
		Quantity:       g.faker.Number(1, 50),
		Unit:           "pcs",
		DonorName:      &u.DisplayName,
		DonorPhone:     &phone,
		DonorEmail:     &u.Email,
		DeliveryMethod: g.faker.RandomString([]string{"drop-off", "pickup"}),
		Status:         model.DonationPledged,
	}
}

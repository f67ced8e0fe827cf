package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/database"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/store"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter menu",
	Long:  `seed inserts the starter menu when the menu table is empty. With --force the starter items are upserted even if other items exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.Open(cmd.Context(), cfg.DSN(), log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		return seedMenu(cmd.Context(), store.NewMenuStore(db), seedForce, log)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "upsert the starter items even when the menu is not empty")
}

func starterMenu() []models.MenuItem {
	item := func(id, name, desc, category string, rupees int64) models.MenuItem {
		return models.MenuItem{
			ID:          id,
			Name:        name,
			Description: desc,
			Price:       money.FromMajor(rupees),
			Category:    category,
			Available:   true,
		}
	}
	return []models.MenuItem{
		item("seed-masala-dosa", "Masala Dosa", "Crispy dosa with potato masala, sambar and chutney", "South Indian", 60),
		item("seed-veg-biryani", "Veg Biryani", "Basmati rice with mixed vegetables and raita", "Main Course", 120),
		item("seed-paneer-butter-masala", "Paneer Butter Masala", "Paneer in a rich tomato gravy", "Main Course", 150),
		item("seed-cold-coffee", "Cold Coffee", "Chilled coffee blended with milk", "Beverages", 50),
		item("seed-samosa", "Samosa (2 pcs)", "Fried pastry with spiced potato filling", "Snacks", 30),
	}
}

func seedMenu(ctx context.Context, menu *store.MenuStore, force bool, log *zap.Logger) error {
	n, err := menu.CountItems(ctx)
	if err != nil {
		return err
	}
	if n > 0 && !force {
		log.Info("menu already has items, skipping seed", zap.Int64("items", n))
		return nil
	}
	created, updated, err := menu.UpsertItems(ctx, starterMenu())
	if err != nil {
		return err
	}
	log.Info("🍽️ starter menu loaded", zap.Int("created", created), zap.Int("updated", updated))
	return nil
}

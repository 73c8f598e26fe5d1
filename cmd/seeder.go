package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/catalog-management/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		hash, err := bcrypt.GenerateFromPassword([]byte("123456"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		ctx := context.Background()
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			log.Fatalf("failed to begin seed transaction: %v", err)
		}
		defer func() { _ = tx.Rollback() }()

		if clearData {
			if _, err := tx.ExecContext(ctx, `TRUNCATE tb_user_role, tb_user, tb_role, tb_product_category, tb_product, tb_category RESTART IDENTITY`); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared catalog tables")
		}

		roleIDs := make(map[string]int64)
		for _, authority := range []string{auth.RoleOperator, auth.RoleAdmin} {
			id, err := ensureRole(ctx, tx, authority)
			if err != nil {
				log.Fatalf("failed to seed role %s: %v", authority, err)
			}
			roleIDs[authority] = id
		}

		users := []struct {
			FirstName string
			LastName  string
			Email     string
			Roles     []string
		}{
			{"Alex", "Brown", "alex@gmail.com", []string{auth.RoleOperator}},
			{"Maria", "Green", "maria@gmail.com", []string{auth.RoleOperator, auth.RoleAdmin}},
		}
		for _, u := range users {
			id, created, err := ensureUser(ctx, tx, u.FirstName, u.LastName, u.Email, string(hash))
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			if !created {
				fmt.Println("user already exists; will ensure roles:", u.Email)
			}
			for _, role := range u.Roles {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tb_user_role (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					id, roleIDs[role]); err != nil {
					log.Fatalf("failed to grant %s to %s: %v", role, u.Email, err)
				}
			}
			fmt.Println("Seeded user:", u.Email)
		}

		categoryIDs := make(map[string]int64)
		for _, name := range []string{"Livros", "Eletrônicos", "Computadores"} {
			id, err := ensureCategory(ctx, tx, name)
			if err != nil {
				log.Fatalf("failed to seed category %s: %v", name, err)
			}
			categoryIDs[name] = id
		}

		date := time.Date(2020, 7, 13, 20, 50, 7, 0, time.UTC)
		products := []struct {
			Name        string
			Description string
			Price       float64
			ImgURL      string
			Categories  []string
		}{
			{"The Lord of the Rings", "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", 90.5, "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/1-big.jpg", []string{"Livros"}},
			{"Smart TV", "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", 2190.0, "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/2-big.jpg", []string{"Eletrônicos", "Computadores"}},
			{"Macbook Pro", "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", 1250.0, "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/3-big.jpg", []string{"Computadores"}},
			{"PC Gamer", "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", 1200.0, "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/4-big.jpg", []string{"Computadores"}},
		}
		for i, p := range products {
			var id int64
			err := tx.GetContext(ctx, &id, `SELECT id FROM tb_product WHERE name = $1`, p.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				log.Fatalf("failed to look up product %s: %v", p.Name, err)
			}
			if err := tx.GetContext(ctx, &id,
				`INSERT INTO tb_product (name, description, price, img_url, date) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				p.Name, p.Description, p.Price, p.ImgURL, date.Add(time.Duration(i)*time.Hour)); err != nil {
				log.Fatalf("failed to insert product %s: %v", p.Name, err)
			}
			for _, c := range p.Categories {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tb_product_category (product_id, category_id) VALUES ($1, $2)`,
					id, categoryIDs[c]); err != nil {
					log.Fatalf("failed to link product %s to %s: %v", p.Name, c, err)
				}
			}
			fmt.Printf("Seeded product: %s\n", p.Name)
		}

		if err := tx.Commit(); err != nil {
			log.Fatalf("failed to commit seed data: %v", err)
		}
		fmt.Println("Catalog seeded successfully")
	},
}

func ensureRole(ctx context.Context, tx *sqlx.Tx, authority string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id,
		`INSERT INTO tb_role (authority) VALUES ($1)
		 ON CONFLICT (authority) DO UPDATE SET authority = EXCLUDED.authority
		 RETURNING id`, authority)
	return id, err
}

func ensureUser(ctx context.Context, tx *sqlx.Tx, firstName, lastName, email, hash string) (int64, bool, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM tb_user WHERE email = $1`, email)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	err = tx.GetContext(ctx, &id,
		`INSERT INTO tb_user (first_name, last_name, email, password) VALUES ($1, $2, $3, $4) RETURNING id`,
		firstName, lastName, email, hash)
	return id, true, err
}

func ensureCategory(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM tb_category WHERE name = $1`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = tx.GetContext(ctx, &id, `INSERT INTO tb_category (name) VALUES ($1) RETURNING id`, name)
	return id, err
}

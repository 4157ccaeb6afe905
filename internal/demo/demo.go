// Package demo loads the demonstration catalog and accounts used by local
// environments.
package demo

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// Profiles creates profiles for seeded accounts.
type Profiles interface {
	Create(ctx context.Context, userID int64) error
	GrantAdmin(ctx context.Context, userID int64) error
}

// Options controls which accounts are created.
type Options struct {
	AdminUsername    string
	AdminPassword    string
	CustomerPassword string
}

// DefaultOptions are the credentials documented for local environments.
var DefaultOptions = Options{
	AdminUsername:    "admin",
	AdminPassword:    "admin123",
	CustomerPassword: "password123",
}

// Stats reports what Load created.
type Stats struct {
	Authors    int
	Categories int
	Books      int
	Users      int
}

// Load upserts the demo catalog and creates the staff account and the demo
// customers. Running it twice creates nothing new.
func Load(ctx context.Context, lg *zap.Logger, w catalog.Writer, users auth.Repository, profiles Profiles, opts Options) (Stats, error) {
	var st Stats

	authors := make(map[string]int64, len(demoAuthors))
	for _, a := range demoAuthors {
		author := catalog.Author{
			FirstName:   a.first,
			LastName:    a.last,
			Nationality: a.nationality,
			Biography:   fmt.Sprintf("Biografía de **%s %s**.", a.first, a.last),
		}
		if err := w.UpsertAuthor(ctx, &author); err != nil {
			return st, errors.Wrap(err, "upsert author")
		}
		authors[author.FullName()] = author.ID
		st.Authors++
	}

	categories := make(map[string]int64, len(demoCategories))
	for _, name := range demoCategories {
		c := catalog.Category{
			Name:        name,
			Description: "Libros de " + name,
			Active:      true,
		}
		if err := w.UpsertCategory(ctx, &c); err != nil {
			return st, errors.Wrap(err, "upsert category")
		}
		categories[name] = c.ID
		st.Categories++
	}

	for i, b := range demoBooks {
		authorID, ok := authors[b.author]
		if !ok {
			return st, errors.Errorf("book %q: unknown author %q", b.title, b.author)
		}
		categoryID, ok := categories[b.category]
		if !ok {
			return st, errors.Errorf("book %q: unknown category %q", b.title, b.category)
		}
		book := catalog.Book{
			Title:       b.title,
			Author:      catalog.Author{ID: authorID},
			CategoryID:  &categoryID,
			Description: fmt.Sprintf("Una obra fundamental en el género de *%s*, escrita por %s.", b.category, b.author),
			Price:       decimal.NewFromInt(b.price),
			Stock:       5 + (i*7)%36,
			Active:      true,
			Featured:    i%4 == 0,
		}
		created, err := w.InsertBook(ctx, &book)
		if err != nil {
			return st, errors.Wrap(err, "insert book")
		}
		if created {
			st.Books++
		}
	}
	lg.Info("Demo catalog loaded",
		zap.Int("authors", st.Authors),
		zap.Int("categories", st.Categories),
		zap.Int("books", st.Books),
	)

	admin := account{username: opts.AdminUsername, email: opts.AdminUsername + "@logos.com", password: opts.AdminPassword, staff: true}
	accounts := append([]account{admin}, demoCustomers(opts.CustomerPassword)...)
	for _, a := range accounts {
		created, err := createAccount(ctx, users, profiles, a)
		if err != nil {
			return st, errors.Wrapf(err, "create account %q", a.username)
		}
		if created {
			st.Users++
			lg.Info("Demo account created", zap.String("username", a.username), zap.Bool("staff", a.staff))
		}
	}
	return st, nil
}

type account struct {
	username string
	email    string
	password string
	staff    bool
}

func createAccount(ctx context.Context, users auth.Repository, profiles Profiles, a account) (bool, error) {
	hash, err := auth.HashPassword(a.password)
	if err != nil {
		return false, err
	}
	u := &auth.User{
		Username:     a.username,
		Email:        a.email,
		PasswordHash: hash,
		IsStaff:      a.staff,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	if err := profiles.Create(ctx, u.ID); err != nil {
		return false, errors.Wrap(err, "create profile")
	}
	if a.staff {
		if err := profiles.GrantAdmin(ctx, u.ID); err != nil {
			return false, errors.Wrap(err, "grant admin")
		}
	}
	return true, nil
}

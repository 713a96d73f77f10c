// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"lightwork/internal/models"
	"lightwork/internal/store"
)

const (
	seedEmail    = "admin@lightwork.local"
	seedPassword = "admin"
)

// sampleTemplate is the body of the template page of the sample type. Its
// elements are mapped to the book fields below.
const sampleTemplate = `<article class="book">` +
	`<h1>Title</h1>` +
	`<p class="author">Author</p>` +
	`<img class="cover" src="" alt="">` +
	`<div class="summary">Summary</div>` +
	`</article>`

// Seed populates the database with initial development data: a default
// admin user (prompted to set up 2FA on first login) and, when no content
// type is defined yet, a sample "book" type with a mapped template page and
// one published record. Each part is skipped if its data already exists.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedSampleType(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, 'Admin', 'admin', FALSE)
	`, seedEmail, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("seeded default admin user", "email", seedEmail, "password", seedPassword)
	return nil
}

func seedSampleType(db *sql.DB) error {
	types := store.NewContentTypeStore(db)
	records := store.NewRecordStore(db)

	existing, err := types.List()
	if err != nil {
		return fmt.Errorf("seed check types: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("content types already seeded, skipping")
		return nil
	}

	taken, err := records.SlugExists(models.PageType, "book-template", nil)
	if err != nil {
		return fmt.Errorf("seed check template page: %w", err)
	}
	if taken {
		slog.Info("sample template page exists without its type, skipping")
		return nil
	}

	page, err := records.Create(&models.Record{
		Type:  models.PageType,
		Title: "Book Template",
		Slug:  "book-template",
		Body:  sampleTemplate,
	})
	if err != nil {
		return fmt.Errorf("seed template page: %w", err)
	}

	book := &models.ContentType{
		Slug:         "book",
		Singular:     "Book",
		Plural:       "Books",
		Public:       true,
		HasArchive:   true,
		Supports:     models.DefaultSupports,
		RewriteSlug:  "books",
		TemplatePage: &page.ID,
		Fields: []models.Field{
			{Name: "author", Label: "Author", Type: models.FieldText},
			{Name: "cover", Label: "Cover", Type: models.FieldImage},
			{Name: "summary", Label: "Summary", Type: models.FieldTextarea},
		},
	}
	if err := types.Create(book); err != nil {
		return fmt.Errorf("seed book type: %w", err)
	}

	mapping := models.FieldMapping{
		"author":  "html>body:eq(1)>article>p",
		"cover":   "html>body:eq(1)>article>img",
		"summary": "html>body:eq(1)>article>div",
	}
	if err := store.NewMappingStore(db).Replace(book, mapping); err != nil {
		return fmt.Errorf("seed book mapping: %w", err)
	}

	_, err = records.Create(&models.Record{
		Type:   book.Slug,
		Title:  "Dune",
		Slug:   "dune",
		Status: models.RecordPublished,
		Fields: map[string]string{
			"author":  "Frank Herbert",
			"summary": "A desert planet.\nA spice everyone wants.",
		},
	})
	if err != nil {
		return fmt.Errorf("seed book record: %w", err)
	}

	slog.Info("seeded sample content type", "type", book.Slug, "template_page", page.ID)
	return nil
}

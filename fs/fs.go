// Package appfs embeds the files shipped inside the binary: SQL migrations and email templates.
package appfs

import "embed"

var (
	//go:embed migrations/*.sql
	Migrations embed.FS

	//go:embed templates/email/*
	Templates embed.FS
)

const EmailTemplatesDir = "templates/email"

package web

import "embed"

// StaticFS embeds the landing page and static assets.
//
//go:embed static/*
var StaticFS embed.FS

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

// Tones lists the preset tones offered by the CLI.
var Tones = []string{
	DefaultTone,
	"Formal & Professional",
	"Concise & Direct",
	"Creative & Enthusiastic",
	"Socratic (Ask Questions)",
	"ELI5 (Simple)",
}

// Formats lists the preset output formats offered by the CLI.
var Formats = []string{
	"Text (Default)",
	"Markdown Table",
	"Bullet Points",
	"JSON",
	"Python Code",
	"Executive Summary",
	"Step-by-Step Guide",
}

// Constraints lists the preset negative constraints offered by the CLI.
var Constraints = []string{
	"No preambles ('Here is the...')",
	"No AI apologies ('As an AI...')",
	"No passive voice",
	"No jargon",
}

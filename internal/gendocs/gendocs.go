// Package gendocs writes the versioned demo corpus: documents that
// exist in multiple dated revisions, for exercising version comparison
// queries.
package gendocs

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type version struct {
	date    string
	content string
}

type documentSet struct {
	name     string
	versions []version
}

var corpus = []documentSet{
	{
		name: "Project_Overview",
		versions: []version{
			{
				date: "2023-01-15",
				content: `Project Overview - Cloud Migration
Status: In Progress
Last Updated: January 15, 2023

Key Components:
1. Database Migration
2. Application Refactoring
3. Security Implementation

Timeline: Q1 2023 - Q3 2023
Budget: $500,000`,
			},
			{
				date: "2023-06-20",
				content: `Project Overview - Cloud Migration
Status: In Progress
Last Updated: June 20, 2023

Key Components:
1. Database Migration (Completed)
2. Application Refactoring (In Progress)
3. Security Implementation (Pending)
4. Performance Optimization (Added)

Timeline: Q1 2023 - Q4 2023
Budget: $650,000 (Revised)`,
			},
		},
	},
	{
		name: "Technical_Specification",
		versions: []version{
			{
				date: "2022-12-10",
				content: `Technical Specification v1.0
Database Architecture

- PostgreSQL 13
- Redis Cache
- Daily Backup Schedule
- Standard Monitoring`,
			},
			{
				date: "2023-03-15",
				content: `Technical Specification v2.0
Database Architecture

- PostgreSQL 14
- Redis Cache with Clustering
- Hourly Backup Schedule
- Enhanced Monitoring
- Disaster Recovery Plan`,
			},
		},
	},
	{
		name: "Meeting_Notes",
		versions: []version{
			{
				date: "2023-02-01",
				content: `Meeting Notes - Migration Steering Group
Date: February 1, 2023
Attendees: Platform, Security, Data teams

Decisions:
- Database migration scheduled to start in February
- Security audit vendor selection still open
- Weekly status reports to stakeholders

Action Items:
1. Finalize PostgreSQL migration runbook
2. Shortlist security audit vendors
3. Set up staging environment`,
			},
			{
				date: "2023-05-10",
				content: `Meeting Notes - Migration Steering Group
Date: May 10, 2023
Attendees: Platform, Security, Data teams, PMO

Decisions:
- Database migration completed and verified
- Security audit awarded to external vendor
- Status reports moved to biweekly

Action Items:
1. Close out migration runbook
2. Schedule penetration test for June
3. Plan performance optimization workstream`,
			},
		},
	},
}

// Write writes every corpus document as plain text, Markdown and Word
// files under dir, creating it when missing. It returns the file names
// written.
func Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var files []string
	for _, set := range corpus {
		for _, v := range set.versions {
			base := fmt.Sprintf("%s_%s", set.name, v.date)
			title := fmt.Sprintf("%s - %s", strings.ReplaceAll(set.name, "_", " "), v.date)

			name := base + ".txt"
			if err := os.WriteFile(filepath.Join(dir, name), []byte(v.content+"\n"), 0o644); err != nil {
				return nil, err
			}
			files = append(files, name)

			name = base + ".md"
			md := "# " + title + "\n\n" + v.content + "\n"
			if err := os.WriteFile(filepath.Join(dir, name), []byte(md), 0o644); err != nil {
				return nil, err
			}
			files = append(files, name)

			name = base + ".docx"
			if err := writeDocx(filepath.Join(dir, name), title, v.content); err != nil {
				return nil, err
			}
			files = append(files, name)
		}
	}
	return files, nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// writeDocx writes a minimal OOXML word processing file: the title as
// the first paragraph, then one paragraph per content line.
func writeDocx(path, title, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(title, content)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			zw.Close()
			f.Close()
			return err
		}
		if _, err := io.WriteString(w, part.data); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func documentXML(title, content string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	writePara(&b, title)
	for _, line := range strings.Split(content, "\n") {
		writePara(&b, line)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writePara(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.WriteString(xmlEscaper.Replace(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

// Package tesisdb provides a local mirror of the SCJN thesis catalog
// (Semanario Judicial de la Federación). It crawls the public catalog in
// resumable, checkpointed passes, stores records in a full-text-indexed
// SQLite database, and downloads the PDF artifact for each record.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or collaborator (e.g., sqlite/, scjn/).
package tesisdb

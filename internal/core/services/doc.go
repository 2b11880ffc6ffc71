// Package services implements the driving ports: search, compare, the
// shopping assistant, catalog ingestion and settings.
//
// The search pipeline runs normalise, extract filters, expand synonyms,
// retrieve, filter on product cards, re-rank, dedupe and sort. Every
// stage talks to infrastructure only through the driven ports.
package services

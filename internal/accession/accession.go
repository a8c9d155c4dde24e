// Package accession pulls NCBI assembly accessions and contig ids out of the
// free-form sample names, file paths and FASTA headers used by BAPS exports.
package accession

import (
	"regexp"
	"strings"
)

var (
	// genbankAssembly matches a GenBank assembly accession such as GCA_018015695.1.
	genbankAssembly = regexp.MustCompile(`GCA_\d+\.\d+`)
	// anyAssembly matches GenBank or RefSeq assembly accessions.
	anyAssembly = regexp.MustCompile(`GC[AF]_\d+\.\d+`)
	// headerContig matches a contig accession framed by double underscores.
	headerContig = regexp.MustCompile(`__([A-Z0-9]+\.\d+)__`)
)

// Host returns the first GenBank assembly accession in s, for example
// GCA_018015695.1 from "GCA_018015695.1_-_PDT000998088.1".
func Host(s string) (string, bool) {
	m := genbankAssembly.FindString(s)
	return m, m != ""
}

// Assembly returns the first GCA_ or GCF_ accession in s.
func Assembly(s string) (string, bool) {
	m := anyAssembly.FindString(s)
	return m, m != ""
}

// HeaderContig returns the first __CONTIG.N__ token of a FASTA header.
func HeaderContig(header string) (string, bool) {
	m := headerContig.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HeaderToken returns the third "__"-separated field of a FASTA header, which
// is the contig in headers shaped like
// >Escherichia_coli__GCA_002099625.1_-_ASM209962v1__NAFV01000136.1__259__562
func HeaderToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), "__", 4)
	if len(parts) < 3 {
		return "", false
	}
	return parts[2], true
}

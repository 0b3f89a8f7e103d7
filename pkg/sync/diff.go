// Package sync implements the reconciliation core: cross-store diffing,
// the watermark tracking which window has been synchronized, and the
// cycle orchestrator that replays missing documents in both directions.
package sync

import "github.com/docbridge/docbridge/pkg/document"

// Diff computes which documents each side is missing. A document from
// sideA whose ID is absent from sideB appears in missingInB, and
// symmetrically for missingInA. An ID present in both fetches is excluded
// from both results regardless of content or timestamp differences:
// presence by ID is the only thing compared. Output ordering follows the
// input slices but is not part of the contract.
func Diff(sideA, sideB []document.Document) (missingInB, missingInA []document.Document) {
	inA := make(map[document.DocumentID]struct{}, len(sideA))
	for _, doc := range sideA {
		inA[doc.ID] = struct{}{}
	}
	inB := make(map[document.DocumentID]struct{}, len(sideB))
	for _, doc := range sideB {
		inB[doc.ID] = struct{}{}
	}

	for _, doc := range sideA {
		if _, ok := inB[doc.ID]; !ok {
			missingInB = append(missingInB, doc)
		}
	}
	for _, doc := range sideB {
		if _, ok := inA[doc.ID]; !ok {
			missingInA = append(missingInA, doc)
		}
	}
	return missingInB, missingInA
}

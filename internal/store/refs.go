package store

import "strconv"

// IncomeRef is the SourceRef of the auto district entry created for an
// income row.
func IncomeRef(id int64) string { return "income:" + strconv.FormatInt(id, 10) }

// TitheRef is the LedgerRef of income rows created by a tithe upsert.
func TitheRef(id int64) string { return "tithe:" + strconv.FormatInt(id, 10) }

// OfferingRef is the LedgerRef of income rows created by an offering upsert.
func OfferingRef(id int64) string { return "offering:" + strconv.FormatInt(id, 10) }

// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for use with errors.Is. Every error returned by the
// parsers in this package matches exactly one of them.
var (
	ErrPatternNotMatched   = errors.New("pattern not matched")
	ErrMalformedNumber     = errors.New("malformed number")
	ErrUnknownDistribution = errors.New("unknown key distribution")
)

// A PatternError reports that a report lacks the structure a parser
// requires: a missing section, a wrong label, or fields out of order.
type PatternError struct {
	// Section is "options", "results" or "latency".
	Section string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s section: %s", e.Section, ErrPatternNotMatched)
}

func (e *PatternError) Is(target error) bool { return target == ErrPatternNotMatched }

// A NumberError reports a matched field whose text could not be
// converted to the field's numeric type.
type NumberError struct {
	Field string // report label, such as "Key size"
	Text  string // the offending text
	Err   error  // strconv.ErrSyntax or strconv.ErrRange
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("field %q: parsing %q: %s", e.Field, e.Text, e.Err)
}

func (e *NumberError) Unwrap() error { return e.Err }

func (e *NumberError) Is(target error) bool { return target == ErrMalformedNumber }

// A DistributionError reports a key distribution name outside the
// known set.
type DistributionError struct {
	Text string
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownDistribution, e.Text)
}

func (e *DistributionError) Is(target error) bool { return target == ErrUnknownDistribution }

// An OrderError reports a latency bound that is smaller than the bound
// before it.
type OrderError struct {
	Lower, Upper           string
	LowerValue, UpperValue uint64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("latency %s (%d) exceeds %s (%d)", e.Lower, e.LowerValue, e.Upper, e.UpperValue)
}

// numErr converts a strconv error into a *NumberError for field.
func numErr(field, text string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		err = ne.Err
	}
	return &NumberError{Field: field, Text: text, Err: err}
}

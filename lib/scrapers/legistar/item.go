package legistar

import (
	"context"
	"errors"
	"fmt"

	"legiscrape/lib/timezone"
)

// Record is one extracted record: field name -> scalar text, normalized
// date string, URL, or []Record for repeated structured fields.
type Record map[string]any

// IsEmpty reports whether every field generator skipped.
func (r Record) IsEmpty() bool {
	return len(r) == 0
}

// Generator is one declared field of a record type: an output key and
// the function that evaluates it. evaluation returning ErrSkipItem
// omits the key; any other error abandons the whole record.
type Generator struct {
	Key string
	Fn  func(ctx context.Context) (any, error)
}

// Registry is the ordered list of a record type's field generators.
// declaration order is emission order.
type Registry []Generator

// BuildRecord evaluates every generator in declaration order, omitting
// the ones that skip. duplicate keys across generators are a
// configuration error.
func BuildRecord(ctx context.Context, registry Registry) (Record, error) {
	record := Record{}
	for _, gen := range registry {
		value, err := gen.Fn(ctx)
		if errors.Is(err, ErrSkipItem) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", gen.Key, err)
		}
		if _, dup := record[gen.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, gen.Key)
		}
		record[gen.Key] = value
	}
	return record, nil
}

// TextGenerators declares one plain-text generator per logical field
// name, the common case for detail-page fields.
func TextGenerators(agg *FieldAggregator, keys ...string) Registry {
	registry := make(Registry, 0, len(keys))
	for _, key := range keys {
		key := key
		registry = append(registry, Generator{
			Key: key,
			Fn: func(ctx context.Context) (any, error) {
				text, err := agg.FieldText(key)
				if err != nil {
					return nil, err
				}
				return text, nil
			},
		})
	}
	return registry
}

// DateGenerator declares a field parsed with the jurisdiction's date
// format and emitted in normalized form.
func DateGenerator(agg *FieldAggregator, key string) Generator {
	return Generator{
		Key: key,
		Fn: func(ctx context.Context) (any, error) {
			parsed, err := agg.FieldDate(key)
			if err != nil {
				return nil, err
			}
			return timezone.Normalize(parsed), nil
		},
	}
}

// URLGenerator declares a field whose value is its first link.
func URLGenerator(agg *FieldAggregator, key string) Generator {
	return Generator{
		Key: key,
		Fn: func(ctx context.Context) (any, error) {
			href, err := agg.FieldURL(key)
			if err != nil {
				return nil, err
			}
			if href == "" {
				return nil, ErrSkipItem
			}
			return href, nil
		},
	}
}

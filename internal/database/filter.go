// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// listSeparator joins category and theme lists in storage.
const listSeparator = ", "

// bookColumns is the column order scanBook expects.
var bookColumns = []string{
	"id", "title", "author", "genre", "categories", "themes", "language", "year",
	"access_count", "sale_count", "featured", "display_order", "cover_url", "created_at",
}

// builder uses ? placeholders, which DuckDB accepts natively.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// scalarColumns maps single-valued fields to their column.
var scalarColumns = map[recommend.Field]string{
	recommend.FieldTitle:    "title",
	recommend.FieldAuthor:   "author",
	recommend.FieldGenre:    "genre",
	recommend.FieldLanguage: "language",
}

// listColumns maps set-valued fields to their column.
var listColumns = map[recommend.Field]string{
	recommend.FieldCategory: "categories",
	recommend.FieldTheme:    "themes",
}

// conditionSQL translates a condition. ok is false when the condition can
// never match (empty value or unknown field).
func conditionSQL(c recommend.Condition) (expr sq.Sqlizer, ok bool) {
	value := strings.ToLower(strings.TrimSpace(c.Value))
	if value == "" {
		return nil, false
	}

	if c.Field == recommend.FieldLanguage && c.Op == recommend.MatchExact {
		return languageSQL(value)
	}

	if col, found := scalarColumns[c.Field]; found {
		if c.Op == recommend.MatchContains {
			return sq.Expr("contains(lower(trim("+col+")), ?)", value), true
		}
		return sq.Expr("lower(trim("+col+")) = ?", value), true
	}

	if col, found := listColumns[c.Field]; found {
		if c.Op == recommend.MatchContains {
			return sq.Expr("contains(lower("+col+"), ?)", value), true
		}
		return sq.Expr("list_contains(string_split(lower("+col+"), '"+listSeparator+"'), ?)", value), true
	}

	return nil, false
}

// languageSQL matches every stored spelling that normalizes to code: its
// known variants, and any of them followed by a region suffix.
func languageSQL(code string) (expr sq.Sqlizer, ok bool) {
	variants := recommend.LanguageVariants(code)
	if len(variants) == 0 {
		return nil, false
	}
	or := sq.Or{sq.Eq{"lower(trim(language))": variants}}
	for _, v := range variants {
		if strings.ContainsAny(v, "-_") {
			continue
		}
		or = append(or,
			sq.Expr("starts_with(lower(trim(language)), ?)", v+"-"),
			sq.Expr("starts_with(lower(trim(language)), ?)", v+"_"),
		)
	}
	return or, true
}

// anyLanguageSQL matches books in any of codes. ok is false when no code is usable.
func anyLanguageSQL(codes []string) (expr sq.Sqlizer, ok bool) {
	or := sq.Or{}
	for _, code := range codes {
		if e, found := languageSQL(code); found {
			or = append(or, e)
		}
	}
	return or, len(or) > 0
}

// notExpr negates a predicate.
type notExpr struct {
	pred sq.Sqlizer
}

// ToSql implements squirrel.Sqlizer.
func (n notExpr) ToSql() (string, []any, error) {
	sql, args, err := n.pred.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

// orderColumns maps SQL-expressible sort keys to ORDER BY terms.
var orderColumns = map[recommend.SortKey]string{
	recommend.SortSalesDesc:       "sale_count DESC",
	recommend.SortAccessesDesc:    "access_count DESC",
	recommend.SortDisplayOrderAsc: "display_order ASC",
	recommend.SortCreatedDesc:     "created_at DESC",
}

func hasRandomOrder(keys []recommend.SortKey) bool {
	for _, k := range keys {
		if k == recommend.SortRandom {
			return true
		}
	}
	return false
}

// buildFilterQuery translates q into a SELECT over books. SortRandom becomes
// a seeded hash of the id, applied after the other sort keys.
func buildFilterQuery(q *recommend.Query) sq.SelectBuilder {
	b := builder.Select(bookColumns...).From("books")

	if len(q.Any) > 0 {
		anyOf := sq.Or{}
		for _, c := range q.Any {
			if expr, ok := conditionSQL(c); ok {
				anyOf = append(anyOf, expr)
			}
		}
		if len(anyOf) == 0 {
			b = b.Where("1=0")
		} else {
			b = b.Where(anyOf)
		}
	}

	if len(q.IDs) > 0 {
		b = b.Where(sq.Eq{"id": q.IDs})
	}
	if len(q.ExcludeIDs) > 0 {
		b = b.Where(sq.NotEq{"id": q.ExcludeIDs})
	}
	if len(q.Languages) > 0 {
		if expr, ok := anyLanguageSQL(q.Languages); ok {
			b = b.Where(expr)
		} else {
			b = b.Where("1=0")
		}
	}
	if expr, ok := anyLanguageSQL(q.ExcludeLanguages); ok {
		b = b.Where(notExpr{pred: expr})
	}
	if q.OnlyPopular {
		b = b.Where(sq.Or{
			sq.Eq{"featured": true},
			sq.Gt{"sale_count": 0},
			sq.Gt{"access_count": 0},
		})
	}

	for _, k := range q.OrderBy {
		if term, ok := orderColumns[k]; ok {
			b = b.OrderBy(term)
		}
	}
	if hasRandomOrder(q.OrderBy) {
		b = b.OrderByClause("hash(id, CAST(? AS BIGINT))", q.Seed)
	}
	b = b.OrderBy("id ASC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}

package mongo

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
)

// buildFilter translates a filter expression into a query document.
// Must conditions are ANDed; should conditions form one $or clause.
func buildFilter(expr filter.Expression) (bson.D, error) {
	clauses := make([]bson.D, 0, len(expr.Must())+1)
	for _, c := range expr.Must() {
		clause, err := buildCondition(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	switch should := expr.Should(); len(should) {
	case 0:
	case 1:
		clause, err := buildCondition(should[0])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	default:
		alternatives := make(bson.A, 0, len(should))
		for _, c := range should {
			clause, err := buildCondition(c)
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, clause)
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: alternatives}})
	}

	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0], nil
	default:
		all := make(bson.A, len(clauses))
		for i, c := range clauses {
			all[i] = c
		}
		return bson.D{{Key: "$and", Value: all}}, nil
	}
}

func buildCondition(c filter.Condition) (bson.D, error) {
	switch c.Kind() {
	case filter.AnyOf:
		return bson.D{{Key: c.Key(), Value: bson.D{{Key: "$in", Value: c.Values()}}}}, nil
	case filter.Contains:
		return bson.D{{Key: c.Key(), Value: containsRegex(c.Text())}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported condition on %q", db.ErrInvalidQuery, c.Key())
	}
}

// containsRegex matches text literally anywhere in the value, ignoring case.
func containsRegex(text string) bson.D {
	return bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(text)},
		{Key: "$options", Value: "i"},
	}
}

// buildProjection includes fields and always drops _id.
func buildProjection(fields []string) bson.D {
	proj := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return append(proj, bson.E{Key: "_id", Value: 0})
}

func buildSort(fields []db.SortField) bson.D {
	sort := make(bson.D, 0, len(fields))
	for _, f := range fields {
		order := 1
		if f.Descending {
			order = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: order})
	}
	return sort
}

func buildDistinctPipeline(q *db.DistinctQuery) (mongodriver.Pipeline, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("%w: field is required", db.ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", db.ErrInvalidQuery, q.Limit)
	}
	match, err := buildCondition(q.Match)
	if err != nil {
		return nil, err
	}
	if q.Match.Key() != q.Field {
		return nil, fmt.Errorf("%w: match on %q does not target %q", db.ErrInvalidQuery, q.Match.Key(), q.Field)
	}

	return mongodriver.Pipeline{
		{{Key: "$unwind", Value: "$" + q.Field}},
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + q.Field}}}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}, nil
}

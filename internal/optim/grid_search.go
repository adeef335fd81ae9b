// Package optim searches controller parameter space, used to tune mimic
// PID gains against a tracking metric.
package optim

import (
	"context"
	"math"
)

// Evaluator runs one candidate parameter set and returns its cost. An error
// disqualifies the candidate without aborting the search.
type Evaluator func(params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search exhaustively evaluates the grid and returns the parameter set with
// the lowest cost. Returns ctx.Err when canceled mid-search.
func (g *GridSearch) Search(ctx context.Context, evaluate Evaluator) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate Evaluator,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := evaluate(current)
		if err != nil {
			return nil
		}
		if val < *best {
			*best = val
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}
			*bestParams = params
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, evaluate, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

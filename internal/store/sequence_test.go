package store_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/pkg/api"
)

func stepPositions(t *testing.T, s *store.Store, r *api.Recipe) map[string]int {
	t.Helper()
	steps, err := s.ListSteps(context.Background(), r.ID)
	require.NoError(t, err)
	res := map[string]int{}
	for _, st := range steps {
		res[st.Instruction] = st.Order
	}
	return res
}

func sortedOrders(t *testing.T, s *store.Store, r *api.Recipe) []int {
	t.Helper()
	steps, err := s.ListSteps(context.Background(), r.ID)
	require.NoError(t, err)
	res := make([]int, len(steps))
	for i, st := range steps {
		res[i] = st.Order
	}
	slices.Sort(res)
	return res
}

func seedSteps(
	t *testing.T, s *store.Store, seq *order.Sequencer, r *api.Recipe, n int,
) []*api.Step {
	t.Helper()
	res := make([]*api.Step, n)
	for i := range res {
		res[i] = newStep(r, i+1)
		require.NoError(t,
			seq.Append(context.Background(), s.Steps(), res[i]))
	}
	return res
}

func dense(n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = i + 1
	}
	return res
}

func TestStepAppend(t *testing.T) {
	s := openStore(t)
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")

	steps := seedSteps(t, s, seq, r, 5)
	assert.Equal(t, 1, steps[0].Order)
	assert.Equal(t, 5, steps[4].Order)
	assert.Equal(t, dense(5), sortedOrders(t, s, r))

	got, err := s.StepByID(context.Background(), r.ID, steps[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Step number 3", got.Instruction)
	assert.Equal(t, 3, got.Order)
}

func TestStepAppendLimitAndConflict(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")

	dup := newStep(r, 1)
	seedSteps(t, s, seq, r, 1)
	assert.ErrorIs(t, seq.Append(ctx, s.Steps(), dup), store.ErrConflict)

	for i := 2; i <= order.MaxPositions; i++ {
		require.NoError(t, seq.Append(ctx, s.Steps(), newStep(r, i)))
	}
	extra := newStep(r, order.MaxPositions+1)
	assert.ErrorIs(t, seq.Append(ctx, s.Steps(), extra), order.ErrLimitReached)
	assert.Equal(t, dense(order.MaxPositions), sortedOrders(t, s, r))
}

func TestStepAppendUnknownRecipe(t *testing.T) {
	s := openStore(t)
	seq := order.NewSequencer(order.ZeroReject)
	st := &api.Step{
		ID: api.NewItemID(), RecipeID: api.NewRecipeID(), Instruction: "x",
	}
	err := seq.Append(context.Background(), s.Steps(), st)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestStepReorder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	steps := seedSteps(t, s, seq, r, 5)

	_, err := seq.Reorder(ctx, s.Steps(), steps[2], 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"Step number 1": 1,
		"Step number 2": 2,
		"Step number 3": 5,
		"Step number 4": 3,
		"Step number 5": 4,
	}, stepPositions(t, s, r))

	_, err = seq.Reorder(ctx, s.Steps(), steps[1], "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"Step number 1": 2,
		"Step number 2": 1,
		"Step number 3": 5,
		"Step number 4": 3,
		"Step number 5": 4,
	}, stepPositions(t, s, r))
}

func TestStepReorderRejectsWithoutMutation(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	steps := seedSteps(t, s, seq, r, 5)
	before := stepPositions(t, s, r)

	_, err := seq.Reorder(ctx, s.Steps(), steps[0], 6)
	assert.ErrorIs(t, err, order.ErrOutOfRange)
	_, err = seq.Reorder(ctx, s.Steps(), steps[0], -1)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)
	_, err = seq.Reorder(ctx, s.Steps(), steps[0], 0)
	assert.ErrorIs(t, err, order.ErrInvalidArgument)
	assert.Equal(t, before, stepPositions(t, s, r))

	ghost := &api.Step{ID: api.NewItemID(), RecipeID: r.ID}
	_, err = seq.Reorder(ctx, s.Steps(), ghost, 1)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestStepRemoveCloses(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	steps := seedSteps(t, s, seq, r, 4)

	require.NoError(t, seq.Remove(ctx, s.Steps(), steps[0]))
	assert.Equal(t, dense(3), sortedOrders(t, s, r))
	_, err := s.StepByID(ctx, r.ID, steps[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	next := newStep(r, 9)
	require.NoError(t, seq.Append(ctx, s.Steps(), next))
	assert.Equal(t, 4, next.Order)
}

func TestUpdateStep(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	steps := seedSteps(t, s, seq, r, 2)

	steps[0].Instruction = "Rinse lentils"
	require.NoError(t, s.UpdateStep(ctx, steps[0]))
	require.NoError(t, s.UpdateStep(ctx, steps[0]))

	steps[1].Instruction = "Rinse lentils"
	assert.ErrorIs(t, s.UpdateStep(ctx, steps[1]), store.ErrConflict)
}

func TestConcurrentStepReorders(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	steps := seedSteps(t, s, seq, r, 8)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rnd := rand.New(rand.NewPCG(uint64(w), 3))
			for range 15 {
				src := steps[rnd.IntN(len(steps))]
				item := &api.Step{ID: src.ID, RecipeID: r.ID}
				_, err := seq.Reorder(ctx, s.Steps(), item,
					rnd.IntN(len(steps))+1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, dense(len(steps)), sortedOrders(t, s, r))
}

func TestImages(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")

	var images []*api.Image
	for i := range 3 {
		url := fmt.Sprintf("https://cdn.example.com/%d.jpg", i)
		im := &api.Image{
			ID: api.NewItemID(), RecipeID: r.ID, URL: url,
			Identifier: api.ImageIdentifier(url),
		}
		require.NoError(t, seq.Append(ctx, s.Images(), im))
		images = append(images, im)
	}
	assert.Equal(t, 3, images[2].Order)

	dup := &api.Image{
		ID: api.NewItemID(), RecipeID: r.ID, URL: images[0].URL,
		Identifier: images[0].Identifier,
	}
	assert.ErrorIs(t, seq.Append(ctx, s.Images(), dup), store.ErrConflict)

	_, err := seq.Reorder(ctx, s.Images(), images[0], 3)
	require.NoError(t, err)
	list, err := s.ListImages(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, images[1].ID, list[0].ID)
	assert.Equal(t, images[2].ID, list[1].ID)
	assert.Equal(t, images[0].ID, list[2].ID)

	images[1].URL = images[2].URL
	images[1].Identifier = images[2].Identifier
	assert.ErrorIs(t, s.UpdateImage(ctx, images[1]), store.ErrConflict)

	got, err := s.ImageByID(ctx, r.ID, images[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Order)

	steps, err := s.ListSteps(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestDeleteRecipeCascades(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seq := order.NewSequencer(order.ZeroReject)
	r := createRecipe(t, s, createUser(t, s, "anna"), "Dal")
	seedSteps(t, s, seq, r, 3)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID))
	steps, err := s.ListSteps(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

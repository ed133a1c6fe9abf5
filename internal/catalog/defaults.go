package catalog

import "github.com/hyperengineering/nextbest/internal/types"

func defaultItems() []types.Item {
	return []types.Item{
		// Food
		{ID: "f1", Name: "Taco Loco", Category: types.CategoryFood, Rating: 4.5, Price: types.PriceCheap, DistanceKm: 1.2, Tags: []string{"mexican", "casual"}},
		{ID: "f2", Name: "Sushi Mura", Category: types.CategoryFood, Rating: 4.7, Price: types.PriceModerate, DistanceKm: 3.8, Tags: []string{"japanese", "date-night"}},
		{ID: "f3", Name: "Mama’s Pasta", Category: types.CategoryFood, Rating: 4.2, Price: types.PriceModerate, DistanceKm: 2.1, Tags: []string{"italian", "family"}},

		// Entertainment
		{ID: "e1", Name: "Arcade Vault", Category: types.CategoryEntertainment, Rating: 4.6, Price: types.PriceCheap, DistanceKm: 2.5, Tags: []string{"games", "group"}},
		{ID: "e2", Name: "Cinema XXI", Category: types.CategoryEntertainment, Rating: 4.3, Price: types.PriceModerate, DistanceKm: 1.8, Tags: []string{"movies"}},
		{ID: "e3", Name: "Escape Room HQ", Category: types.CategoryEntertainment, Rating: 4.8, Price: types.PriceModerate, DistanceKm: 6.2, Tags: []string{"puzzle", "team"}},

		// Activities
		{ID: "a1", Name: "Riverside Walk", Category: types.CategoryActivity, Rating: 4.4, Price: types.PriceCheap, DistanceKm: 0.9, Tags: []string{"outdoors", "free"}},
		{ID: "a2", Name: "Climbing Gym", Category: types.CategoryActivity, Rating: 4.7, Price: types.PriceModerate, DistanceKm: 5.4, Tags: []string{"fitness"}},
		{ID: "a3", Name: "Board Game Cafe", Category: types.CategoryActivity, Rating: 4.5, Price: types.PriceCheap, DistanceKm: 3.1, Tags: []string{"indoor", "group"}},

		{ID: "f4", Name: "BBQ Shack", Category: types.CategoryFood, Rating: 4.1, Price: types.PriceModerate, DistanceKm: 4.0, Tags: []string{"bbq"}},
		{ID: "e4", Name: "Mini Golf Park", Category: types.CategoryEntertainment, Rating: 4.2, Price: types.PriceCheap, DistanceKm: 7.5, Tags: []string{"outdoors", "group"}},
		{ID: "a4", Name: "Yoga in the Park", Category: types.CategoryActivity, Rating: 4.6, Price: types.PriceCheap, DistanceKm: 2.9, Tags: []string{"wellness", "outdoors"}},
	}
}

// Package seed 演示数据：一个用户、九个分类、九个条目。
package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"item-catalog/internal/domain"
	"item-catalog/internal/repo"
)

var Owner = domain.User{
	Name:  "Bob Wang",
	Email: "wwwyyycss@gmail.com",
	Image: "https://bit.ly/29KRDC2",
}

var Categories = []string{
	"Soccer", "Basketball", "Baseball", "Frisbee", "Snowboarding",
	"Rock Climbing", "Football", "Skating", "Hockey",
}

type item struct {
	Name, Description, Picture, Category string
}

var Items = []item{
	{"Two shinguards", "Two pieces of equipment worn on the front of a player's shin to protect them from injury.", "https://bit.ly/2rQS4G2", "Soccer"},
	{"Shinguards", "A piece of equipment worn on the front of a player's shin to protect them from injury.", "https://bit.ly/2rQS4G2", "Soccer"},
	{"Jersey", "The standard equipment and attire worn by players.", "https://bit.ly/2k7f4fC", "Soccer"},
	{"Soccer Cleats", "The classic soccer shoe with cleats/studs designed to provide traction and stability on most natural grass, outdoor soccer fields.", "https://bit.ly/2k7yxgk", "Soccer"},
	{"Bat", "A smooth wooden or metal club used in the sport of baseball to hit the ball after it is thrown by the pitcher.", "https://bit.ly/2La6ysy", "Baseball"},
	{"Frisbee", "A gliding toy or sporting item that is generally plastic and roughly 20 to 25 centimetres (8 to 10 in) in diameter with a lip.", "https://bit.ly/2k7i4Zq", "Frisbee"},
	{"Goggles", "Forms of protective eyewear that usually enclose or protect the area surrounding the eye in order to prevent particulates, water or chemicals from striking the eyes.", "https://bit.ly/2rSGavg", "Snowboarding"},
	{"Snowboard", "Boards where both feet are secured to the same board, which are wider than skis, with the ability to glide on snow.", "https://bit.ly/2GwIOvh", "Snowboarding"},
	{"Stick", "A piece of equipment used by the players in most forms of hockey to move the ball or puck.", "https://bit.ly/2Iv6WnZ", "Hockey"},
}

// Load 在一个事务里写入演示数据；表需已存在且为空
func Load(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := Owner
		if err := repo.NewUserRepo(tx).Create(ctx, &owner); err != nil {
			return err
		}
		cats := repo.NewCategoryRepo(tx)
		ids := make(map[string]uint, len(Categories))
		for _, name := range Categories {
			c := domain.Category{Name: name, UserID: owner.ID}
			if err := cats.Create(ctx, &c); err != nil {
				return err
			}
			ids[name] = c.ID
		}
		items := repo.NewItemRepo(tx)
		for _, it := range Items {
			catID, ok := ids[it.Category]
			if !ok {
				return fmt.Errorf("seed item %q: unknown category %q", it.Name, it.Category)
			}
			row := domain.Item{
				Name:        it.Name,
				Description: it.Description,
				Picture:     it.Picture,
				CategoryID:  catID,
				UserID:      owner.ID,
			}
			if err := items.Create(ctx, &row); err != nil {
				return err
			}
		}
		return nil
	})
}

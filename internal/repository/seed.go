package repository

import (
	"time"

	"wallmag/internal/models"
)

// SeedPosts: стартовое наполнение стены; даты считаются от now.
func SeedPosts(now time.Time) []models.Post {
	day := 24 * time.Hour
	now = now.UTC()
	return []models.Post{
		{
			ID:       "p1",
			Title:    "The Echoes of Hallways",
			Author:   "Ananya Sharma",
			Date:     now,
			Category: models.CategoryPoem,
			Excerpt:  "Footsteps whisper secrets of the day...",
			Content:  "Footsteps whisper secrets of the day,\nPinned notes dance in the breeze,\nOn this wall, we stitch our voices,\nInto a quilt of stories and dreams.",
			Likes:    12,
			Approved: true,
		},
		{
			ID:       "a1",
			Title:    "Why Our Wall Magazine Matters",
			Author:   "Faculty Editor",
			Date:     now.Add(-day),
			Category: models.CategoryArticle,
			Excerpt:  "A living canvas for campus thought and creativity.",
			Content:  "Wall magazines turn corridors into conversation. This digital version preserves that spirit—open, vibrant, diverse—so your words and art meet readers anywhere.",
			Likes:    25,
			Approved: true,
		},
		{
			ID:       "n1",
			Title:    "Campus Fest Announced",
			Author:   "Student Council",
			Date:     now.Add(-2 * day),
			Category: models.CategoryNews,
			Excerpt:  "Music, art, food stalls, and competitions all week.",
			Content:  "The annual Campus Fest starts next Monday. Stages across the main lawn, DIY booths, open mic nights, and the much-awaited art derby!",
			Image:    "/campus-festival-poster.jpg",
			Likes:    5,
			Approved: true,
		},
		{
			ID:       "art1",
			Title:    "Chalk Mural: The River",
			Author:   "Rohit Mehta",
			Date:     now,
			Category: models.CategoryArt,
			Excerpt:  "Flowing lines and sky reflections.",
			Content:  "A study in motion and calm inspired by the monsoon.",
			Image:    "/student-chalk-mural-river.jpg",
			Likes:    18,
			Approved: true,
		},
		{
			ID:       "a2",
			Title:    "Five Tips to Start Writing",
			Author:   "Editor Team",
			Date:     now.Add(-3 * day),
			Category: models.CategoryArticle,
			Excerpt:  "Blank page blues? Try these quick warmups.",
			Content:  "1) Free-write for five minutes.\n2) Describe a hallway notice in detail.\n3) Rewrite a nursery rhyme as sci-fi.\n4) Interview your backpack.\n5) Post it!",
			Likes:    9,
			Approved: true,
		},
	}
}

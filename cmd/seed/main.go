// Command seed fills the database with synthetic engagement data.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Maximum top-level comments per post")
	flag.IntVar(&opts.VotesPerPost, "votes", opts.VotesPerPost, "Maximum votes per post")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed, 0 for time based")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset (Minimal, Default, Busy)")
	flag.Parse()

	if *preset != "" {
		p, err := seed.PresetOptions(*preset)
		if err != nil {
			log.Fatal(err)
		}
		p.Seed = opts.Seed
		opts = p
		log.Printf("applying preset %s (ignoring size flags)", *preset)
	} else {
		log.Printf("target: %d users, %d posts, clean=%v", opts.Users, opts.Posts, *shouldClean)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("created %d users, %d posts, %d comments, %d post votes",
		sum.Users, sum.Posts, sum.Comments, sum.Reactions)
}

package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
)

var eightballResponses = []string{
	"Yes.",
	"No.",
	"Maybe.",
	"Definitely!",
	"Absolutely not.",
	"Ask again later.",
	"It is certain.",
	"I have my doubts.",
}

func (r *Router) roll(ctx context.Context, req *Request) error {
	sides := 6
	if len(req.Args) > 0 {
		parsed, err := strconv.Atoi(req.Args[0])
		if err != nil || parsed < 1 {
			return r.reply(ctx, req, "Usage: roll [sides]")
		}
		sides = parsed
	}
	return r.reply(ctx, req, fmt.Sprintf("🎲 %s rolled a %d (1-%d)", req.Ev.Mention, rand.Intn(sides)+1, sides))
}

func (r *Router) coinflip(ctx context.Context, req *Request) error {
	side := "Heads"
	if rand.Float64() >= 0.5 {
		side = "Tails"
	}
	return r.reply(ctx, req, fmt.Sprintf("🪙 %s flipped a coin: %s", req.Ev.Mention, side))
}

func (r *Router) eightball(ctx context.Context, req *Request) error {
	if req.ArgText == "" {
		return r.reply(ctx, req, "Usage: eightball <question>")
	}
	answer := eightballResponses[rand.Intn(len(eightballResponses))]
	return r.reply(ctx, req, fmt.Sprintf("🎱 %s asked: %s\nAnswer: %s", req.Ev.Mention, req.ArgText, answer))
}

package cli

import (
	"fmt"
)

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *Context) error {
	s, err := ctx.openSession()
	if err != nil {
		return err
	}

	streak, err := s.Streak()
	if err != nil {
		return err
	}
	dayNum, err := s.DayNumber()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Day %d of 75", dayNum)))
	if streak == 0 {
		fmt.Println("No active streak. Log today to start one.")
		return nil
	}
	fmt.Printf("Current streak: %d day(s)\n", streak)
	return nil
}

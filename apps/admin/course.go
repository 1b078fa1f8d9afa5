package main

import (
	"context"
	"fmt"

	"github.com/trezcool/coursepanel/core/course"
)

func (cli *commandLine) addCourse(nc course.NewCourse) error {
	if err := nc.Validate(cli.validate); err != nil {
		return err
	}
	c, err := cli.courseSvc.Create(context.Background(), nc)
	if err != nil {
		return err
	}
	fmt.Printf("created course %s: %s\n", c.ID, course.TitleCase(c.Name))
	return nil
}

func (cli *commandLine) assign(courseID, email string) error {
	return cli.courseSvc.AssignInstructor(context.Background(), courseID, email)
}

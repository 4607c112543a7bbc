package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

func printFoods(w io.Writer, foods []models.Food) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING\tRESTAURANT\tSTATUS")
	for _, f := range foods {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID,
			f.Name,
			strconv.FormatFloat(f.Price, 'f', 2, 64),
			strconv.FormatFloat(f.Rating, 'f', -1, 64),
			f.Restaurant,
			f.Status,
		)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"grainsim/model"
)

// CSV 表头，一行对应一个节点
var CSVHeader = []string{"Height", "Temp", "Moisture", "DML"}

func WriteCSV(w io.Writer, f *model.FieldState) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for i := 0; i < f.Len(); i++ {
		row := []string{
			formatFloat(f.Position[i]),
			formatFloat(f.Temperature[i]),
			formatFloat(f.Moisture[i]),
			formatFloat(f.CumulativeSpoilage[i]),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func SaveCSV(path string, f *model.FieldState) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.WithField("path", path).Info("报表已保存")
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

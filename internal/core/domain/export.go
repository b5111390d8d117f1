package domain

// Export file names produced in the output directory.
const (
	StudentCourseFile    = "student_courses.csv"
	StudentTimetableFile = "student_timetable.csv"
	TimetableFile        = "timetable.csv"
)

// ExportResult lists the files materialised by an export.
type ExportResult struct {
	StudentCoursePath    string
	StudentTimetablePath string
	TimetablePath        string
	OutputDir            string
}

// Files returns the export paths in upload order.
func (r ExportResult) Files() []string {
	var files []string
	for _, p := range []string{r.StudentCoursePath, r.StudentTimetablePath, r.TimetablePath} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}

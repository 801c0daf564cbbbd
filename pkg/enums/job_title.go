package enums

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultJob marks imported contacts whose job title is not in the vocabulary.
// It never appears in pickers, only on imported records.
const DefaultJob = "À définir"

// Department groups job titles the way a film crew is organised.
type Department struct {
	Name string   `json:"name"`
	Jobs []string `json:"jobs"`
}

var departments = []Department{
	{Name: "Réalisation", Jobs: []string{
		"Réalisateur",
		"1er Assistant Réalisateur",
		"2e Assistant Réalisateur",
		"3e Assistant Réalisateur",
		"Scripte",
	}},
	{Name: "Image", Jobs: []string{
		"Directeur de la photographie",
		"Chef opérateur",
		"Cadreur",
		"Opérateur Steadicam",
		"Opérateur Louma",
		"1er Assistant Caméra (Focus Puller)",
		"2e Assistant Caméra (Clap/Loader)",
		"3e Assistant Caméra",
		"Vidéo Assist",
		"DIT (Digital Imaging Technician)",
		"Data Manager",
	}},
	{Name: "Son", Jobs: []string{
		"Ingénieur du Son",
		"Perchman",
		"Assistant Son",
		"Sound Designer",
		"Monteur Son",
		"Mixeur",
	}},
	{Name: "Lumière", Jobs: []string{
		"Chef Électro (Gaffer)",
		"Électro",
		"Chef Machiniste (Key Grip)",
		"Machiniste",
		"Rigger",
	}},
	{Name: "Régie", Jobs: []string{
		"Régisseur Général",
		"Régisseur Adjoint",
		"Régisseur",
		"Assistant Régie",
		"Régisseur Transport",
		"Régisseur Plateau",
	}},
	{Name: "Décors", Jobs: []string{
		"Chef Décorateur",
		"Assistant Décorateur",
		"Ensemblière",
		"Accessoiriste",
		"Peintre Décor",
		"Constructeur Décor",
		"Menuisier Décor",
		"Habilleur de Décor",
	}},
	{Name: "Costumes", Jobs: []string{
		"Chef Costumier",
		"Assistant Costumier",
		"Habilleur",
		"Styliste",
		"Costumier",
	}},
	{Name: "Maquillage et Coiffure", Jobs: []string{
		"Chef Maquilleur",
		"Maquilleur",
		"Assistant Maquilleur",
		"Chef Coiffeur",
		"Coiffeur",
		"Perruquier",
	}},
	{Name: "Production", Jobs: []string{
		"Producteur",
		"Directeur de Production",
		"Assistant de Production",
		"Administrateur de Production",
		"Secrétaire de Production",
	}},
	{Name: "Post-Production", Jobs: []string{
		"Monteur Image",
		"Assistant Monteur",
		"Étalonneur",
		"Superviseur VFX",
		"Graphiste VFX",
		"Motion Designer",
	}},
	{Name: "Autres Spécialités", Jobs: []string{
		"Cascadeur",
		"Coordinateur Stunts",
		"Dresseur Animalier",
		"Photographe de Plateau",
		"Making-of",
		"Chef Cuisinier Plateau",
	}},
}

var (
	departmentByJob = map[string]string{}
	allJobs         []string
)

func init() {
	for _, dept := range departments {
		for _, job := range dept.Jobs {
			departmentByJob[job] = dept.Name
			allJobs = append(allJobs, job)
		}
	}
	SortLocalized(allJobs)
}

// Departments returns a copy of the vocabulary grouped by department.
func Departments() []Department {
	out := make([]Department, len(departments))
	for i, dept := range departments {
		out[i] = Department{Name: dept.Name, Jobs: append([]string(nil), dept.Jobs...)}
	}
	return out
}

// AllJobs returns every selectable job title in French alphabetical order.
// DefaultJob is not included.
func AllJobs() []string {
	return append([]string(nil), allJobs...)
}

// IsStandardJob reports whether job belongs to the selectable vocabulary.
func IsStandardJob(job string) bool {
	_, ok := departmentByJob[job]
	return ok
}

// IsValidJob accepts the vocabulary plus DefaultJob.
func IsValidJob(job string) bool {
	return job == DefaultJob || IsStandardJob(job)
}

// DepartmentOf returns the department for job, or "" when unknown.
func DepartmentOf(job string) string {
	return departmentByJob[job]
}

// SortLocalized orders values with French collation, ignoring case.
func SortLocalized(values []string) {
	c := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(values, func(i, j int) bool {
		return c.CompareString(values[i], values[j]) < 0
	})
}

package demo

import "github.com/xenking/logos-bookstore/internal/domain/catalog"

type authorSeed struct {
	first, last, nationality string
}

type bookSeed struct {
	category, author, title string
	price                   int64
}

var demoAuthors = []authorSeed{
	{"Gabriel", "García Márquez", "Colombiana"},
	{"Julio", "Cortázar", "Argentina"},
	{"Jorge Luis", "Borges", "Argentina"},
	{"Mario", "Vargas Llosa", "Peruana"},
	{"Isabel", "Allende", "Chilena"},
	{"Juan", "Rulfo", "Mexicana"},
	{"Carlos", "Fuentes", "Mexicana"},
	{"Octavio", "Paz", "Mexicana"},
	{"Isaac", "Asimov", "Rusa"},
	{"Arthur C.", "Clarke", "Británica"},
	{"Frank", "Herbert", "Estadounidense"},
	{"Philip K.", "Dick", "Estadounidense"},
	{"William", "Gibson", "Estadounidense"},
	{"J.R.R.", "Tolkien", "Británica"},
	{"George R.R.", "Martin", "Estadounidense"},
	{"J.K.", "Rowling", "Británica"},
	{"Patrick", "Rothfuss", "Estadounidense"},
	{"Brandon", "Sanderson", "Estadounidense"},
	{"Yuval Noah", "Harari", "Israelí"},
	{"Carl", "Sagan", "Estadounidense"},
	{"Stephen", "Hawking", "Británica"},
	{"Michel", "Foucault", "Francesa"},
	{"Eduardo", "Galeano", "Uruguaya"},
	{"Agatha", "Christie", "Británica"},
	{"Arthur Conan", "Doyle", "Británica"},
	{"Gillian", "Flynn", "Estadounidense"},
	{"Stieg", "Larsson", "Sueca"},
	{"Jo", "Nesbø", "Noruega"},
	{"Miguel", "de Cervantes", "Española"},
	{"Fiódor", "Dostoyevski", "Rusa"},
	{"León", "Tolstói", "Rusa"},
	{"Jane", "Austen", "Británica"},
	{"George", "Orwell", "Británica"},
}

var demoCategories = []string{
	"Realismo Mágico y Latinoamericano",
	"Ciencia Ficción Clásica",
	"Fantasía Épica",
	"Ensayo y Divulgación",
	"Misterio y Thriller",
	"Clásicos Universales",
}

var demoBooks = []bookSeed{
	{"Realismo Mágico y Latinoamericano", "Gabriel García Márquez", "Cien años de soledad", 350},
	{"Realismo Mágico y Latinoamericano", "Julio Cortázar", "Rayuela", 330},
	{"Realismo Mágico y Latinoamericano", "Jorge Luis Borges", "Ficciones", 290},
	{"Realismo Mágico y Latinoamericano", "Mario Vargas Llosa", "La ciudad y los perros", 300},
	{"Realismo Mágico y Latinoamericano", "Isabel Allende", "La casa de los espíritus", 310},
	{"Realismo Mágico y Latinoamericano", "Juan Rulfo", "Pedro Páramo", 250},
	{"Realismo Mágico y Latinoamericano", "Carlos Fuentes", "La región más transparente", 320},
	{"Realismo Mágico y Latinoamericano", "Octavio Paz", "El laberinto de la soledad", 280},
	{"Realismo Mágico y Latinoamericano", "Gabriel García Márquez", "El amor en los tiempos del cólera", 340},
	{"Realismo Mágico y Latinoamericano", "Eduardo Galeano", "Las venas abiertas de América Latina", 360},
	{"Ciencia Ficción Clásica", "Isaac Asimov", "Fundación", 420},
	{"Ciencia Ficción Clásica", "Arthur C. Clarke", "2001: Una odisea espacial", 400},
	{"Ciencia Ficción Clásica", "Frank Herbert", "Dune", 480},
	{"Ciencia Ficción Clásica", "Philip K. Dick", "¿Sueñan los androides con ovejas eléctricas?", 360},
	{"Ciencia Ficción Clásica", "Isaac Asimov", "Yo, Robot", 380},
	{"Ciencia Ficción Clásica", "William Gibson", "Neuromante", 390},
	{"Ciencia Ficción Clásica", "George Orwell", "1984", 300},
	{"Ciencia Ficción Clásica", "Frank Herbert", "El mesías de Dune", 450},
	{"Ciencia Ficción Clásica", "Isaac Asimov", "Los propios dioses", 410},
	{"Ciencia Ficción Clásica", "Philip K. Dick", "Ubik", 370},
	{"Fantasía Épica", "J.R.R. Tolkien", "El Señor de los Anillos: La Comunidad del Anillo", 550},
	{"Fantasía Épica", "George R.R. Martin", "Juego de Tronos", 580},
	{"Fantasía Épica", "J.K. Rowling", "Harry Potter y la piedra filosofal", 400},
	{"Fantasía Épica", "Patrick Rothfuss", "El nombre del viento", 530},
	{"Fantasía Épica", "Brandon Sanderson", "Mistborn: El imperio final", 510},
	{"Fantasía Épica", "J.R.R. Tolkien", "El Hobbit", 450},
	{"Fantasía Épica", "George R.R. Martin", "Choque de Reyes", 590},
	{"Fantasía Épica", "J.K. Rowling", "Harry Potter y la cámara secreta", 420},
	{"Fantasía Épica", "Patrick Rothfuss", "El temor de un hombre sabio", 620},
	{"Fantasía Épica", "Brandon Sanderson", "El camino de los reyes", 650},
	{"Ensayo y Divulgación", "Yuval Noah Harari", "Sapiens: De animales a dioses", 450},
	{"Ensayo y Divulgación", "Carl Sagan", "Cosmos", 430},
	{"Ensayo y Divulgación", "Stephen Hawking", "Breve historia del tiempo", 380},
	{"Ensayo y Divulgación", "Michel Foucault", "Vigilar y castigar", 410},
	{"Ensayo y Divulgación", "Yuval Noah Harari", "Homo Deus: Breve historia del mañana", 460},
	{"Ensayo y Divulgación", "Carl Sagan", "Un punto azul pálido", 440},
	{"Ensayo y Divulgación", "Eduardo Galeano", "Espejos: Una historia casi universal", 370},
	{"Ensayo y Divulgación", "Stephen Hawking", "El universo en una cáscara de nuez", 390},
	{"Ensayo y Divulgación", "Michel Foucault", "Las palabras y las cosas", 420},
	{"Ensayo y Divulgación", "Yuval Noah Harari", "21 lecciones para el siglo XXI", 470},
	{"Misterio y Thriller", "Agatha Christie", "Asesinato en el Orient Express", 280},
	{"Misterio y Thriller", "Arthur Conan Doyle", "Estudio en escarlata", 260},
	{"Misterio y Thriller", "Gillian Flynn", "Perdida", 350},
	{"Misterio y Thriller", "Stieg Larsson", "Los hombres que no amaban a las mujeres", 380},
	{"Misterio y Thriller", "Jo Nesbø", "El muñeco de nieve", 360},
	{"Misterio y Thriller", "Agatha Christie", "Diez negritos", 290},
	{"Misterio y Thriller", "Arthur Conan Doyle", "El sabueso de los Baskerville", 270},
	{"Misterio y Thriller", "Gillian Flynn", "Heridas abiertas", 340},
	{"Misterio y Thriller", "Stieg Larsson", "La chica que soñaba con una cerilla y un bidón de gasolina", 390},
	{"Misterio y Thriller", "Jo Nesbø", "Petirrojo", 370},
	{"Clásicos Universales", "Miguel de Cervantes", "Don Quijote de la Mancha", 500},
	{"Clásicos Universales", "Fiódor Dostoyevski", "Crimen y castigo", 450},
	{"Clásicos Universales", "León Tolstói", "Guerra y paz", 600},
	{"Clásicos Universales", "Jane Austen", "Orgullo y prejuicio", 320},
	{"Clásicos Universales", "George Orwell", "Rebelión en la granja", 250},
	{"Clásicos Universales", "Fiódor Dostoyevski", "Los hermanos Karamázov", 550},
	{"Clásicos Universales", "León Tolstói", "Anna Karénina", 520},
	{"Clásicos Universales", "Jane Austen", "Sentido y sensibilidad", 310},
	{"Clásicos Universales", "Miguel de Cervantes", "Novelas ejemplares", 480},
	{"Clásicos Universales", "George Orwell", "Homenaje a Cataluña", 290},
}

var (
	customerFirstNames = []string{"Ana", "Luis", "Elena", "Carlos", "Sofía", "David", "Laura", "Miguel", "Isabel", "Javier"}
	customerLastNames  = []string{"García", "Martínez", "López", "Sánchez", "Pérez", "Gómez", "Díaz", "Hernández", "Vázquez", "Moreno"}
)

// demoCustomers derives one account per demo name, e.g. "anag" for Ana García.
func demoCustomers(password string) []account {
	out := make([]account, 0, len(customerFirstNames))
	for i, first := range customerFirstNames {
		username := catalog.Slugify(first) + catalog.Slugify(customerLastNames[i])[:1]
		out = append(out, account{
			username: username,
			email:    username + "@test.com",
			password: password,
		})
	}
	return out
}

package diagnostic

// DefaultEvents devuelve el catalogo inicial: escala Holmes-Rahe adaptada al frances.
func DefaultEvents() []StressEvent {
	return []StressEvent{
		{ID: 1, Label: "Décès du conjoint", Weight: 100, Category: CategoryFamily},
		{ID: 2, Label: "Divorce", Weight: 73, Category: CategoryFamily},
		{ID: 3, Label: "Séparation conjugale", Weight: 65, Category: CategoryFamily},
		{ID: 4, Label: "Emprisonnement", Weight: 63, Category: CategoryPersonal},
		{ID: 5, Label: "Décès d'un proche parent", Weight: 63, Category: CategoryFamily},
		{ID: 6, Label: "Blessure ou maladie personnelle", Weight: 53, Category: CategoryHealth},
		{ID: 7, Label: "Mariage", Weight: 50, Category: CategoryFamily},
		{ID: 8, Label: "Licenciement", Weight: 47, Category: CategoryWork},
		{ID: 9, Label: "Réconciliation conjugale", Weight: 45, Category: CategoryFamily},
		{ID: 10, Label: "Départ à la retraite", Weight: 45, Category: CategoryWork},
		{ID: 11, Label: "Changement dans la santé d'un membre de la famille", Weight: 44, Category: CategoryHealth},
		{ID: 12, Label: "Grossesse", Weight: 40, Category: CategoryHealth},
		{ID: 13, Label: "Difficultés sexuelles", Weight: 39, Category: CategoryHealth},
		{ID: 14, Label: "Arrivée d'un nouveau membre dans la famille", Weight: 39, Category: CategoryFamily},
		{ID: 15, Label: "Réorganisation professionnelle", Weight: 39, Category: CategoryWork},
		{ID: 16, Label: "Changement de situation financière", Weight: 38, Category: CategoryFinance},
		{ID: 17, Label: "Décès d'un ami proche", Weight: 37, Category: CategorySocial},
		{ID: 18, Label: "Changement de poste", Weight: 36, Category: CategoryWork},
		{ID: 19, Label: "Changement dans le nombre de disputes avec le conjoint", Weight: 35, Category: CategoryFamily},
		{ID: 20, Label: "Hypothèque ou emprunt important", Weight: 31, Category: CategoryFinance},
		{ID: 21, Label: "Saisie d'hypothèque ou de prêt", Weight: 30, Category: CategoryFinance},
		{ID: 22, Label: "Changement de responsabilités au travail", Weight: 29, Category: CategoryWork},
		{ID: 23, Label: "Départ d'un enfant du foyer", Weight: 29, Category: CategoryFamily},
		{ID: 24, Label: "Difficultés avec la belle-famille", Weight: 29, Category: CategoryFamily},
		{ID: 25, Label: "Réussite personnelle remarquable", Weight: 28, Category: CategoryPersonal},
		{ID: 26, Label: "Conjoint commençant ou cessant de travailler", Weight: 26, Category: CategoryFamily},
		{ID: 27, Label: "Début ou fin de scolarité", Weight: 26, Category: CategoryPersonal},
		{ID: 28, Label: "Changement des conditions de vie", Weight: 25, Category: CategoryPersonal},
		{ID: 29, Label: "Révision des habitudes personnelles", Weight: 24, Category: CategoryPersonal},
		{ID: 30, Label: "Difficultés avec son supérieur", Weight: 23, Category: CategoryWork},
		{ID: 31, Label: "Changement d'horaires ou de conditions de travail", Weight: 20, Category: CategoryWork},
		{ID: 32, Label: "Déménagement", Weight: 20, Category: CategoryPersonal},
		{ID: 33, Label: "Changement d'école", Weight: 20, Category: CategoryPersonal},
		{ID: 34, Label: "Changement de loisirs", Weight: 19, Category: CategorySocial},
		{ID: 35, Label: "Changement d'activités religieuses", Weight: 19, Category: CategorySocial},
		{ID: 36, Label: "Changement d'activités sociales", Weight: 18, Category: CategorySocial},
		{ID: 37, Label: "Emprunt ou crédit modeste", Weight: 17, Category: CategoryFinance},
		{ID: 38, Label: "Changement des habitudes de sommeil", Weight: 16, Category: CategoryHealth},
		{ID: 39, Label: "Changement du nombre de réunions familiales", Weight: 15, Category: CategoryFamily},
		{ID: 40, Label: "Changement des habitudes alimentaires", Weight: 15, Category: CategoryHealth},
		{ID: 41, Label: "Vacances", Weight: 13, Category: CategoryPersonal},
		{ID: 42, Label: "Période de Noël", Weight: 12, Category: CategorySocial},
		{ID: 43, Label: "Infractions mineures à la loi", Weight: 11, Category: CategoryPersonal},
	}
}

// DefaultCatalog construye el catalogo inicial. El seed es valido por construccion.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultEvents())
	if err != nil {
		panic(err)
	}
	return c
}
